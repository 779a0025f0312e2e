package partner

import (
	"strings"
	"time"

	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// User is a login account. Credentials are managed outside this service.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	IsActive  bool
	CreatedAt time.Time
}

// Profile links a user to the customer it acts for
type Profile struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CustomerID   string
	IsFirstLogin bool
	CreatedAt    time.Time
}

// NewPartnerUser creates a user account and its first-login profile for a customer
func NewPartnerUser(customerID, username, email string) (*User, *Profile, error) {
	username = strings.TrimSpace(username)
	if customerID == "" {
		return nil, nil, shared.ErrInvalidInput.Newf("customer id cannot be empty")
	}
	if username == "" || len(username) > 150 {
		return nil, nil, shared.ErrInvalidInput.Newf("username must be 1 to 150 characters")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, nil, shared.ErrInvalidInput.Newf("invalid email address %q", email)
	}
	now := time.Now()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
	}
	profile := &Profile{
		ID:           uuid.New(),
		UserID:       user.ID,
		CustomerID:   customerID,
		IsFirstLogin: true,
		CreatedAt:    now,
	}
	return user, profile, nil
}

// ContractStatus tracks the master contract onboarding of a partner
type ContractStatus string

const (
	ContractStatusInvited      ContractStatus = "INVITED"
	ContractStatusInfoDone     ContractStatus = "INFO_DONE"
	ContractStatusContractSent ContractStatus = "CONTRACT_SENT"
	ContractStatusCompleted    ContractStatus = "COMPLETED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusInvited, ContractStatusInfoDone, ContractStatusContractSent, ContractStatusCompleted:
		return true
	}
	return false
}

// Label returns the display label
func (s ContractStatus) Label() string {
	switch s {
	case ContractStatusInvited:
		return "招待済み"
	case ContractStatusInfoDone:
		return "基本情報登録済み"
	case ContractStatusContractSent:
		return "基本契約送信済み"
	case ContractStatusCompleted:
		return "締結完了"
	}
	return string(s)
}

// ContractProgress is the onboarding state of one customer
type ContractProgress struct {
	CustomerID string
	Status     ContractStatus
	UpdatedAt  time.Time
}

// NewContractProgress validates and stamps a progress record
func NewContractProgress(customerID string, status ContractStatus) (*ContractProgress, error) {
	if customerID == "" {
		return nil, shared.ErrInvalidInput.Newf("customer id cannot be empty")
	}
	if !status.IsValid() {
		return nil, shared.ErrInvalidInput.Newf("invalid contract status %q", status)
	}
	return &ContractProgress{CustomerID: customerID, Status: status, UpdatedAt: time.Now()}, nil
}

// SentEmailLog records a mail sent to a customer
type SentEmailLog struct {
	ID         uuid.UUID
	CustomerID string
	Subject    string
	Body       string
	SentAt     time.Time
}

// NewSentEmailLog creates a log entry stamped with sentAt
func NewSentEmailLog(customerID, subject, body string, sentAt time.Time) *SentEmailLog {
	return &SentEmailLog{
		ID:         uuid.New(),
		CustomerID: customerID,
		Subject:    subject,
		Body:       body,
		SentAt:     sentAt,
	}
}

// ErrUsernameTaken is returned when a partner user name is already registered
var ErrUsernameTaken = shared.NewDomainError("USERNAME_TAKEN", "Username is already registered")
