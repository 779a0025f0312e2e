package partner

import (
	"regexp"
	"strings"

	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"golang.org/x/text/width"
)

// AccountType is the kind of bank account payments go to
type AccountType string

const (
	AccountTypeOrdinary AccountType = "普通"
	AccountTypeChecking AccountType = "当座"
)

// IsValid checks if the account type is a valid AccountType
func (a AccountType) IsValid() bool {
	return a == AccountTypeOrdinary || a == AccountTypeChecking
}

var registrationNoPattern = regexp.MustCompile(`^T\d{13}$`)

// ValidRegistrationNo reports whether s is empty or a qualified invoice
// issuer number ("T" followed by 13 digits)
func ValidRegistrationNo(s string) bool {
	return s == "" || registrationNoPattern.MatchString(s)
}

// BankAccount is where a partner is paid
type BankAccount struct {
	BankName      string
	BankBranch    string
	AccountType   AccountType
	AccountNumber string
	AccountName   string
}

// CustomerInput carries the editable fields of a customer
type CustomerInput struct {
	Name                   string
	NameKana               string
	PostalCode             string
	Address                string
	Tel                    string
	Fax                    string
	Email                  string
	CC                     string
	BCC                    string
	RepresentativeName     string
	RepresentativeNameKana string
	RepresentativePosition string
	ResponsiblePerson      string
	ContactPerson          string
	RegistrationNo         string
	Bank                   BankAccount
}

// Customer is a business partner orders are placed with
type Customer struct {
	shared.BaseAggregateRoot
	ID string
	CustomerInput
}

// NewCustomer creates a customer under an allocated 10-digit id
func NewCustomer(id string, in CustomerInput) (*Customer, error) {
	if id == "" {
		return nil, shared.ErrInvalidInput.Newf("customer id cannot be empty")
	}
	c := &Customer{BaseAggregateRoot: shared.NewBaseAggregateRoot(), ID: id}
	if err := c.apply(in); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update replaces the editable fields
func (c *Customer) Update(in CustomerInput) error {
	if err := c.apply(in); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Customer) apply(in CustomerInput) error {
	in = normalize(in)
	if in.Name == "" {
		return shared.ErrInvalidInput.Newf("customer name cannot be empty")
	}
	if len([]rune(in.Name)) > 128 {
		return shared.ErrInvalidInput.Newf("customer name cannot exceed 128 characters")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return shared.ErrInvalidInput.Newf("invalid email address %q", in.Email)
	}
	if !ValidRegistrationNo(in.RegistrationNo) {
		return shared.ErrInvalidInput.Newf("registration number must be T followed by 13 digits")
	}
	if !in.Bank.AccountType.IsValid() {
		return shared.ErrInvalidInput.Newf("invalid account type %q", in.Bank.AccountType)
	}
	c.CustomerInput = in
	return nil
}

// normalize folds full-width digits and symbols in numeric fields to ASCII
func normalize(in CustomerInput) CustomerInput {
	narrow := func(s string) string {
		return strings.TrimSpace(width.Narrow.String(s))
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.PostalCode = narrow(in.PostalCode)
	in.Tel = narrow(in.Tel)
	in.Fax = narrow(in.Fax)
	in.RegistrationNo = narrow(in.RegistrationNo)
	in.Bank.AccountNumber = narrow(in.Bank.AccountNumber)
	if in.Bank.AccountType == "" {
		in.Bank.AccountType = AccountTypeOrdinary
	}
	return in
}

// HasEmail reports whether the customer can receive mail
func (c *Customer) HasEmail() bool {
	return c.Email != ""
}

// CCList returns the comma separated cc addresses
func (c *Customer) CCList() []string {
	return splitAddresses(c.CC)
}

// BCCList returns the comma separated bcc addresses
func (c *Customer) BCCList() []string {
	return splitAddresses(c.BCC)
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Party returns the printed counterparty block
func (c *Customer) Party() printing.Party {
	return printing.Party{
		ID:                     c.ID,
		Name:                   c.Name,
		PostalCode:             c.PostalCode,
		Address:                c.Address,
		Tel:                    c.Tel,
		Fax:                    c.Fax,
		RepresentativeName:     c.RepresentativeName,
		RepresentativePosition: c.RepresentativePosition,
		ResponsiblePerson:      c.ResponsiblePerson,
		ContactPerson:          c.ContactPerson,
		RegistrationNo:         c.RegistrationNo,
		BankName:               c.Bank.BankName,
		BankBranch:             c.Bank.BankBranch,
		AccountType:            string(c.Bank.AccountType),
		AccountNumber:          c.Bank.AccountNumber,
		AccountName:            c.Bank.AccountName,
	}
}
