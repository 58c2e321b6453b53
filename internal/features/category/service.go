package category

import (
	"context"
	"errors"
	"strings"

	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/servererrors"
	"github.com/pankajredekar/shopadmin/internal/slug"
	"github.com/pankajredekar/shopadmin/internal/validate"
)

// slugAttempts bounds retries when a concurrent write takes the generated slug
const slugAttempts = 3

type Storer interface {
	findAll(ctx context.Context) ([]models.Category, error)
	findByID(ctx context.Context, id uint) (*models.Category, error)
	nameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	slugs() slug.Counter
	create(ctx context.Context, category *models.Category) error
	save(ctx context.Context, category *models.Category) error
	countProducts(ctx context.Context, id uint) (int64, error)
	delete(ctx context.Context, category *models.Category) error
}

type Service struct {
	store Storer
}

func NewService(store Storer) *Service {
	return &Service{
		store: store,
	}
}

// List returns every category with its active product count
func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	return s.store.findAll(ctx)
}

func (s *Service) Create(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := s.validate(ctx, req, 0); err != nil {
		return nil, err
	}

	category := &models.Category{Name: req.Name}
	err := s.writeWithSlug(ctx, req.Name, 0, func(generated string) error {
		category.Slug = generated
		return s.store.create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Update renames a category. The slug is only regenerated when the name
// changes.
func (s *Service) Update(ctx context.Context, id uint, req *CategoryRequest) (*models.Category, error) {
	category, err := s.store.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, servererrors.NotFound("Category")
	}

	if err := s.validate(ctx, req, id); err != nil {
		return nil, err
	}

	if req.Name == category.Name {
		if err := s.store.save(ctx, category); err != nil {
			return nil, err
		}
		return category, nil
	}

	err = s.writeWithSlug(ctx, req.Name, id, func(generated string) error {
		category.Name = req.Name
		category.Slug = generated
		return s.store.save(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete soft-deletes a category that owns no active products
func (s *Service) Delete(ctx context.Context, id uint) error {
	category, err := s.store.findByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return servererrors.NotFound("Category")
	}

	count, err := s.store.countProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return servererrors.Conflict(servererrors.ErrCategoryHasProducts)
	}

	return s.store.delete(ctx, category)
}

func (s *Service) validate(ctx context.Context, req *CategoryRequest, excludeID uint) error {
	req.Name = strings.TrimSpace(req.Name)

	fields, err := validate.Collect(req)
	if err != nil {
		return err
	}
	if !fields.Has("name") {
		taken, err := s.store.nameTaken(ctx, req.Name, excludeID)
		if err != nil {
			return err
		}
		if taken {
			fields.Add("name", validate.Taken("name"))
		}
	}
	if len(fields) > 0 {
		return servererrors.Validation(fields)
	}
	return nil
}

// writeWithSlug runs write with a generated slug, mapping exhausted retries to
// the name or slug conflict that caused them.
func (s *Service) writeWithSlug(ctx context.Context, name string, excludeID uint, write func(generated string) error) error {
	err := slug.Write(ctx, name, excludeID, s.store.slugs(), slugAttempts, write)
	if !errors.Is(err, slug.ErrExhausted) {
		return err
	}

	taken, err := s.store.nameTaken(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return servererrors.Validation(validate.FieldErrors{"name": {validate.Taken("name")}})
	}
	return servererrors.Conflict(servererrors.ErrSlugConflict)
}
