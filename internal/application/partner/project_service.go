package partner

import (
	"context"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/sequence"
	"github.com/edi/backend/internal/domain/shared"
)

// ProjectService manages the projects orders are filed under
type ProjectService struct {
	scope txscope.TransactionScope
}

// NewProjectService creates a new ProjectService
func NewProjectService(scope txscope.TransactionScope) *ProjectService {
	return &ProjectService{scope: scope}
}

// Create registers a project under the next PRJ id
func (s *ProjectService) Create(ctx context.Context, req ProjectRequest) (*ProjectResponse, error) {
	var created *order.Project
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		id, err := repos.Sequence().Allocate(ctx, sequence.ProjectScope())
		if err != nil {
			return err
		}
		p, err := order.NewProject(id, req.Name)
		if err != nil {
			return err
		}
		if err := repos.ProjectRepo().Create(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(created)
	return &response, nil
}

// Rename changes the display name of a project
func (s *ProjectService) Rename(ctx context.Context, id string, req ProjectRequest) (*ProjectResponse, error) {
	var renamed *order.Project
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		p, err := repos.ProjectRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Rename(req.Name); err != nil {
			return err
		}
		if err := repos.ProjectRepo().Save(ctx, p); err != nil {
			return err
		}
		renamed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(renamed)
	return &response, nil
}

// List retrieves one page of projects
func (s *ProjectService) List(ctx context.Context, req ListRequest) (*shared.Paginated[ProjectResponse], error) {
	filter := req.toFilter()
	var (
		projects []order.Project
		total    int64
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		projects, total, err = repos.ProjectRepo().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = ToProjectResponse(&projects[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
