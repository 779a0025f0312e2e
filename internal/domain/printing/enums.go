package printing

// Kind represents the type of legal document that can be rendered
type Kind string

const (
	KindOrder         Kind = "ORDER"          // 注文書
	KindAcceptance    Kind = "ACCEPTANCE"     // 注文請書
	KindInvoice       Kind = "INVOICE"        // 請求書
	KindPaymentNotice Kind = "PAYMENT_NOTICE" // 支払通知書
)

// IsValid checks if the Kind is a valid value
func (k Kind) IsValid() bool {
	switch k {
	case KindOrder, KindAcceptance, KindInvoice, KindPaymentNotice:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Title returns the printed document title
func (k Kind) Title() string {
	switch k {
	case KindOrder:
		return "注文書"
	case KindAcceptance:
		return "注文請書"
	case KindInvoice:
		return "請求書"
	case KindPaymentNotice:
		return "支払通知書"
	default:
		return string(k)
	}
}

// FilePrefix returns the download file name prefix, e.g. "order"
func (k Kind) FilePrefix() string {
	switch k {
	case KindOrder:
		return "order"
	case KindAcceptance:
		return "acceptance"
	case KindInvoice:
		return "invoice"
	case KindPaymentNotice:
		return "payment_notice"
	default:
		return "document"
	}
}

// AllKinds returns all valid Kind values
func AllKinds() []Kind {
	return []Kind{KindOrder, KindAcceptance, KindInvoice, KindPaymentNotice}
}

// PaperSize represents the paper size for printing
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4" // 210mm x 297mm
	PaperSizeA5 PaperSize = "A5" // 148mm x 210mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4 || p == PaperSizeA5
}

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	if p == PaperSizeA5 {
		return 148, 210
	}
	return 210, 297
}

// Orientation represents the page orientation for printing
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins holds page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Layout is the page setup of a document kind
type Layout struct {
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
}

// LayoutFor returns the page setup used for kind.
// Payment notices carry a wide settlement table and print landscape.
func LayoutFor(kind Kind) Layout {
	layout := Layout{
		PaperSize:   PaperSizeA4,
		Orientation: OrientationPortrait,
		Margins:     Margins{Top: 15, Right: 12, Bottom: 15, Left: 12},
	}
	if kind == KindPaymentNotice {
		layout.Orientation = OrientationLandscape
	}
	return layout
}
