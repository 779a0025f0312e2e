package printing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is the counterparty block printed on a document
type Party struct {
	ID                     string
	Name                   string
	PostalCode             string
	Address                string
	Tel                    string
	Fax                    string
	RepresentativeName     string
	RepresentativePosition string
	ResponsiblePerson      string
	ContactPerson          string
	RegistrationNo         string
	BankName               string
	BankBranch             string
	AccountType            string
	AccountNumber          string
	AccountName            string
}

// OrderLine is one worker allocation on an order document
type OrderLine struct {
	PersonName     string
	Effort         decimal.Decimal
	BaseFee        int64
	TimeLowerLimit decimal.Decimal
	TimeUpperLimit decimal.Decimal
	ShortageRate   int64
	ExcessRate     int64
	Quantity       int
	Price          int64
}

// OrderSnapshot is the frozen data an order or acceptance document is rendered from
type OrderSnapshot struct {
	OrderID          string
	Status           string
	OrderDate        time.Time
	WorkStart        time.Time
	WorkEnd          time.Time
	OrderEndYM       time.Time
	ProjectID        string
	ProjectName      string
	DeliverableText  string
	PaymentCondition string
	ContractItems    string
	Remarks          string

	BuyerResponsible    string
	BuyerContact        string
	SupplierResponsible string
	SupplierContact     string
	WorkLead            string

	BaseFee        int64
	TimeLowerLimit decimal.Decimal
	TimeUpperLimit decimal.Decimal
	ShortageFee    int64
	ExcessFee      int64

	Items       []OrderLine
	Subtotal    int64
	Tax         int64
	Total       int64
	FinalizedAt *time.Time

	Customer Party
	Company  CompanyInfo
}

// InvoiceLine is one settlement line on an invoice or payment notice
type InvoiceLine struct {
	PersonName     string
	WorkTime       decimal.Decimal
	BaseFee        int64
	TimeLowerLimit decimal.Decimal
	TimeUpperLimit decimal.Decimal
	ShortageRate   int64
	ExcessRate     int64
	ExcessAmount   int64
	ShortageAmount int64
	Subtotal       int64
	Remarks        string
}

// InvoiceSnapshot is the data an invoice or payment notice is rendered from
type InvoiceSnapshot struct {
	InvoiceNo       string
	AcceptanceNo    string
	OrderID         string
	ProjectName     string
	Department      string
	Status          string
	TargetMonth     time.Time
	IssueDate       time.Time
	AcceptanceDate  *time.Time
	PaymentDeadline *time.Time

	Items    []InvoiceLine
	Subtotal int64
	Tax      int64
	Total    int64

	Customer Party
	Company  CompanyInfo
}
