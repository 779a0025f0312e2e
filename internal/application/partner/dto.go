package partner

import (
	"time"

	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ==================== Customer ====================

// CustomerRequest carries every editable customer field. It is used for
// both create and update; update replaces all fields.
type CustomerRequest struct {
	Name                   string `json:"name" binding:"required,max=128"`
	NameKana               string `json:"name_kana" binding:"max=128"`
	PostalCode             string `json:"postal_code" binding:"max=10"`
	Address                string `json:"address" binding:"max=255"`
	Tel                    string `json:"tel" binding:"max=20"`
	Fax                    string `json:"fax" binding:"max=20"`
	Email                  string `json:"email" binding:"omitempty,email"`
	CC                     string `json:"cc" binding:"max=255"`
	BCC                    string `json:"bcc" binding:"max=255"`
	RepresentativeName     string `json:"representative_name" binding:"max=64"`
	RepresentativeNameKana string `json:"representative_name_kana" binding:"max=64"`
	RepresentativePosition string `json:"representative_position" binding:"max=64"`
	ResponsiblePerson      string `json:"responsible_person" binding:"max=64"`
	ContactPerson          string `json:"contact_person" binding:"max=64"`
	RegistrationNo         string `json:"registration_no" binding:"omitempty,registration_no"`
	BankName               string `json:"bank_name" binding:"max=64"`
	BankBranch             string `json:"bank_branch" binding:"max=64"`
	AccountType            string `json:"account_type" binding:"omitempty,account_type"`
	AccountNumber          string `json:"account_number" binding:"max=20"`
	AccountName            string `json:"account_name" binding:"max=64"`
}

// CustomerResponse represents a customer
type CustomerResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	NameKana               string    `json:"name_kana"`
	PostalCode             string    `json:"postal_code"`
	Address                string    `json:"address"`
	Tel                    string    `json:"tel"`
	Fax                    string    `json:"fax"`
	Email                  string    `json:"email"`
	CC                     string    `json:"cc"`
	BCC                    string    `json:"bcc"`
	RepresentativeName     string    `json:"representative_name"`
	RepresentativeNameKana string    `json:"representative_name_kana"`
	RepresentativePosition string    `json:"representative_position"`
	ResponsiblePerson      string    `json:"responsible_person"`
	ContactPerson          string    `json:"contact_person"`
	RegistrationNo         string    `json:"registration_no"`
	BankName               string    `json:"bank_name"`
	BankBranch             string    `json:"bank_branch"`
	AccountType            string    `json:"account_type"`
	AccountNumber          string    `json:"account_number"`
	AccountName            string    `json:"account_name"`
	Version                int       `json:"version"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ListRequest is the common paging query
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=id name created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
}

// DeleteCustomerResponse reports what the cleanup removed
type DeleteCustomerResponse struct {
	CustomerID   string `json:"customer_id"`
	UsersRemoved int64  `json:"users_removed"`
	LogsRemoved  int64  `json:"logs_removed"`
}

// ==================== Onboarding ====================

// ContractProgressRequest sets the onboarding status of a customer
type ContractProgressRequest struct {
	Status string `json:"status" binding:"required,oneof=INVITED INFO_DONE CONTRACT_SENT COMPLETED"`
}

// ContractProgressResponse represents the onboarding status of a customer
type ContractProgressResponse struct {
	CustomerID  string    `json:"customer_id"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListContractProgressRequest filters onboarding records by status
type ListContractProgressRequest struct {
	ListRequest
	Status string `form:"status" binding:"omitempty,oneof=INVITED INFO_DONE CONTRACT_SENT COMPLETED"`
}

// RegisterPartnerUserRequest creates a login for a customer
type RegisterPartnerUserRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// PartnerUserResponse represents a registered partner login
type PartnerUserResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	CustomerID   string    `json:"customer_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsFirstLogin bool      `json:"is_first_login"`
}

// EmailLogResponse represents a sent mail record
type EmailLogResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID string    `json:"customer_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// ==================== Project ====================

// ProjectRequest creates or renames a project
type ProjectRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// ProjectResponse represents a project
type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ==================== Conversions ====================

func (r CustomerRequest) toDomain() partner.CustomerInput {
	return partner.CustomerInput{
		Name:                   r.Name,
		NameKana:               r.NameKana,
		PostalCode:             r.PostalCode,
		Address:                r.Address,
		Tel:                    r.Tel,
		Fax:                    r.Fax,
		Email:                  r.Email,
		CC:                     r.CC,
		BCC:                    r.BCC,
		RepresentativeName:     r.RepresentativeName,
		RepresentativeNameKana: r.RepresentativeNameKana,
		RepresentativePosition: r.RepresentativePosition,
		ResponsiblePerson:      r.ResponsiblePerson,
		ContactPerson:          r.ContactPerson,
		RegistrationNo:         r.RegistrationNo,
		Bank: partner.BankAccount{
			BankName:      r.BankName,
			BankBranch:    r.BankBranch,
			AccountType:   partner.AccountType(r.AccountType),
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
		},
	}
}

func (r ListRequest) toFilter() shared.Filter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.PageSize > 0 {
		f.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		f.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		f.OrderDir = r.OrderDir
	}
	f.Search = r.Search
	return f.Normalize()
}

// ToCustomerResponse converts a domain customer to its response DTO
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		NameKana:               c.NameKana,
		PostalCode:             c.PostalCode,
		Address:                c.Address,
		Tel:                    c.Tel,
		Fax:                    c.Fax,
		Email:                  c.Email,
		CC:                     c.CC,
		BCC:                    c.BCC,
		RepresentativeName:     c.RepresentativeName,
		RepresentativeNameKana: c.RepresentativeNameKana,
		RepresentativePosition: c.RepresentativePosition,
		ResponsiblePerson:      c.ResponsiblePerson,
		ContactPerson:          c.ContactPerson,
		RegistrationNo:         c.RegistrationNo,
		BankName:               c.Bank.BankName,
		BankBranch:             c.Bank.BankBranch,
		AccountType:            string(c.Bank.AccountType),
		AccountNumber:          c.Bank.AccountNumber,
		AccountName:            c.Bank.AccountName,
		Version:                c.GetVersion(),
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}

func toContractProgressResponse(p *partner.ContractProgress) ContractProgressResponse {
	return ContractProgressResponse{
		CustomerID:  p.CustomerID,
		Status:      string(p.Status),
		StatusLabel: p.Status.Label(),
		UpdatedAt:   p.UpdatedAt,
	}
}

func toEmailLogResponse(l *partner.SentEmailLog) EmailLogResponse {
	return EmailLogResponse{
		ID:         l.ID,
		CustomerID: l.CustomerID,
		Subject:    l.Subject,
		Body:       l.Body,
		SentAt:     l.SentAt,
	}
}

// ToProjectResponse converts a domain project to its response DTO
func ToProjectResponse(p *order.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
