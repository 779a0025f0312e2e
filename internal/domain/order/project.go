package order

import (
	"strings"

	"github.com/edi/backend/internal/domain/shared"
)

// Project groups orders under a named engagement
type Project struct {
	shared.Timestamps
	ID   string
	Name string
}

// NewProject creates a project with an allocated PRJ id
func NewProject(id, name string) (*Project, error) {
	if id == "" {
		return nil, shared.ErrInvalidInput.Newf("project id cannot be empty")
	}
	p := &Project{Timestamps: shared.NewTimestamps(), ID: id}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename changes the project name
func (p *Project) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrInvalidInput.Newf("project name cannot be empty")
	}
	if len([]rune(name)) > 200 {
		return shared.ErrInvalidInput.Newf("project name cannot exceed 200 characters")
	}
	p.Name = name
	p.Touch()
	return nil
}
