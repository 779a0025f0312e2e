// Package printing renders the legal documents of the back office (order,
// acceptance, invoice, payment notice) and keeps frozen copies of them.
//
// Rendering is split in two steps. TemplateEngine executes the embedded
// html/template layouts against a document snapshot, and a PDFEngine turns
// the HTML into the bytes that are stored and hashed:
//
//	engine, err := NewChromedpEngine(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    return err
//	}
//	renderer := NewDocumentRenderer(templates, engine, logger)
//	pdf, err := renderer.Render(ctx, &printing.Request{Kind: printing.KindAcceptance, Snapshot: snap})
//
// FileSystemStore is the local printing.ContentStore. Keys are
// content-addressed and each key can be written once.
package printing
