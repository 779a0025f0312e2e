package printing

// CompanyInfo is the issuing company printed on every document.
// It is injected from configuration at startup.
type CompanyInfo struct {
	Name                string `json:"name" mapstructure:"name"`
	PostalCode          string `json:"postal_code" mapstructure:"postal_code"`
	Address             string `json:"address" mapstructure:"address"`
	Tel                 string `json:"tel" mapstructure:"tel"`
	Fax                 string `json:"fax" mapstructure:"fax"`
	RepresentativeTitle string `json:"representative_title" mapstructure:"representative_title"`
	RepresentativeName  string `json:"representative_name" mapstructure:"representative_name"`
	RegistrationNo      string `json:"registration_no" mapstructure:"registration_no"`
	ResponsiblePerson   string `json:"responsible_person" mapstructure:"responsible_person"`
	ContactPerson       string `json:"contact_person" mapstructure:"contact_person"`
	BankName            string `json:"bank_name" mapstructure:"bank_name"`
	BankBranch          string `json:"bank_branch" mapstructure:"bank_branch"`
	AccountType         string `json:"account_type" mapstructure:"account_type"`
	AccountNumber       string `json:"account_number" mapstructure:"account_number"`
	AccountName         string `json:"account_name" mapstructure:"account_name"`
}

// DefaultCompanyInfo returns the fallback company record
func DefaultCompanyInfo() CompanyInfo {
	return CompanyInfo{
		Name:                "有限会社 マックプランニング",
		PostalCode:          "116-0012",
		Address:             "東京都荒川区東尾久8-9-14",
		Tel:                 "090-3043-0477",
		RepresentativeTitle: "代表取締役",
		RepresentativeName:  "吉川 裕",
		RegistrationNo:      "TXXXXXXXXXXXXX",
		ResponsiblePerson:   "吉川 裕",
		ContactPerson:       "吉川 裕",
		AccountType:         "普通",
	}
}

// WithDefaults fills every empty field from DefaultCompanyInfo
func (c CompanyInfo) WithDefaults() CompanyInfo {
	d := DefaultCompanyInfo()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&c.Name, d.Name)
	fill(&c.PostalCode, d.PostalCode)
	fill(&c.Address, d.Address)
	fill(&c.Tel, d.Tel)
	fill(&c.RepresentativeTitle, d.RepresentativeTitle)
	fill(&c.RepresentativeName, d.RepresentativeName)
	fill(&c.RegistrationNo, d.RegistrationNo)
	fill(&c.ResponsiblePerson, d.ResponsiblePerson)
	fill(&c.ContactPerson, d.ContactPerson)
	fill(&c.AccountType, d.AccountType)
	return c
}

// Representative returns title and name joined for signature blocks
func (c CompanyInfo) Representative() string {
	if c.RepresentativeTitle == "" {
		return c.RepresentativeName
	}
	return c.RepresentativeTitle + " " + c.RepresentativeName
}
