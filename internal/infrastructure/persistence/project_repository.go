package persistence

import (
	"context"

	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProjectRepository implements order.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its PRJ id
func (r *GormProjectRepository) FindByID(ctx context.Context, id string) (*order.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "project", id)
	}
	return model.ToDomain(), nil
}

// List returns one page of projects, optionally searching by name
func (r *GormProjectRepository) List(ctx context.Context, filter shared.Filter) ([]order.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if filter.Search != "" {
		query = query.Where(`name LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projectModels []models.ProjectModel
	if err := paginate(query, filter, ProjectSortFields, "id", "id").Find(&projectModels).Error; err != nil {
		return nil, 0, err
	}
	projects := make([]order.Project, len(projectModels))
	for i := range projectModels {
		projects[i] = *projectModels[i].ToDomain()
	}
	return projects, total, nil
}

// Create inserts a new project
func (r *GormProjectRepository) Create(ctx context.Context, p *order.Project) error {
	if err := r.db.WithContext(ctx).Create(models.ProjectModelFromDomain(p)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrInvalidInput.Newf("project %s already exists", p.ID)
		}
		return err
	}
	return nil
}

// Save updates the project name
func (r *GormProjectRepository) Save(ctx context.Context, p *order.Project) error {
	result := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{"name": p.Name, "updated_at": p.UpdatedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.Newf("project %s not found", p.ID)
	}
	return nil
}

// Ensure GormProjectRepository implements order.ProjectRepository
var _ order.ProjectRepository = (*GormProjectRepository)(nil)
