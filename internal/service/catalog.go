package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalogapi/internal/apperror"
	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
)

// CatalogService exposes listing and single-record operations of one
// catalog resource.
type CatalogService[T any] interface {
	// List composes a plan from the raw query parameters and runs it.
	List(ctx context.Context, params query.Params) (*query.Page[T], error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, in *T) (*T, error)
	// Update replaces the record with the given id.
	Update(ctx context.Context, id int64, in *T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

type recordStore[T any] interface {
	query.Store[T]
	Create(ctx context.Context, in *T) (*T, error)
	FindByID(ctx context.Context, id int64) (*T, error)
	Update(ctx context.Context, in *T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// entity describes how a catalog service treats one resource.
type entity[T any] struct {
	resource query.Resource
	validate func(*T) error
	setID    func(*T, int64)
	// uniqueField and referenceField name the request field blamed for a
	// unique or foreign key violation.
	uniqueField    string
	referenceField string
}

type catalogService[T any] struct {
	repo     recordStore[T]
	entity   entity[T]
	defaults query.Defaults
}

func newCatalogService[T any](repo recordStore[T], e entity[T], defaults query.Defaults) *catalogService[T] {
	return &catalogService[T]{repo: repo, entity: e, defaults: defaults}
}

// NewRegionService constructs the region CatalogService.
func NewRegionService(repo repository.RegionRepository, defaults query.Defaults) CatalogService[model.Region] {
	return newCatalogService[model.Region](repo, entity[model.Region]{
		resource:    query.Region,
		validate:    (*model.Region).Validate,
		setID:       func(r *model.Region, id int64) { r.ID = id },
		uniqueField: "code",
	}, defaults)
}

// NewPatronService constructs the patron CatalogService.
func NewPatronService(repo repository.PatronRepository, defaults query.Defaults) CatalogService[model.Patron] {
	return newCatalogService[model.Patron](repo, entity[model.Patron]{
		resource: query.Patron,
		validate: (*model.Patron).Validate,
		setID:    func(p *model.Patron, id int64) { p.ID = id },
	}, defaults)
}

// NewPublisherService constructs the publisher CatalogService.
func NewPublisherService(repo repository.PublisherRepository, defaults query.Defaults) CatalogService[model.Publisher] {
	return newCatalogService[model.Publisher](repo, entity[model.Publisher]{
		resource:       query.Publisher,
		validate:       (*model.Publisher).Validate,
		setID:          func(p *model.Publisher, id int64) { p.ID = id },
		referenceField: "region",
	}, defaults)
}

func (s *catalogService[T]) List(ctx context.Context, params query.Params) (*query.Page[T], error) {
	return query.Run[T](ctx, s.repo, s.entity.resource, params, s.defaults)
}

func (s *catalogService[T]) Get(ctx context.Context, id int64) (*T, error) {
	out, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(id, err)
	}
	return out, nil
}

func (s *catalogService[T]) Create(ctx context.Context, in *T) (*T, error) {
	if err := s.entity.validate(in); err != nil {
		return nil, err
	}
	s.entity.setID(in, 0)
	out, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.storeError(0, err)
	}
	return out, nil
}

func (s *catalogService[T]) Update(ctx context.Context, id int64, in *T) (*T, error) {
	if err := s.entity.validate(in); err != nil {
		return nil, err
	}
	s.entity.setID(in, id)
	out, err := s.repo.Update(ctx, in)
	if err != nil {
		return nil, s.storeError(id, err)
	}
	return out, nil
}

func (s *catalogService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError(id, err)
	}
	return nil
}

// storeError maps repository errors onto the API error taxonomy.
func (s *catalogService[T]) storeError(id int64, err error) error {
	switch {
	case isNoRows(err):
		return fmt.Errorf("%s %d: %w", s.entity.resource.Kind, id, apperror.ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperror.Invalid(fieldOr(s.entity.uniqueField), "already exists")
	case errors.Is(err, repository.ErrReference):
		return apperror.Invalid(fieldOr(s.entity.referenceField), "does not exist")
	case errors.Is(err, repository.ErrCheck):
		return apperror.Invalid("non_field_errors", "value is out of the allowed range")
	default:
		return apperror.Unavailable(err)
	}
}

func fieldOr(name string) string {
	if name == "" {
		return "non_field_errors"
	}
	return name
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
