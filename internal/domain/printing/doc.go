// Package printing contains the document side of the back office: the legal
// documents the system issues (order, acceptance, invoice, payment notice),
// the data snapshots they are rendered from, and the renderer and content
// store ports the order and invoice workflows depend on.
//
// Rendering is deterministic for an identical snapshot and renderer version.
// Stored documents are write-once per key.
package printing
