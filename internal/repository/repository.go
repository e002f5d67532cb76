// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
//
// Lookups of a missing row return an error wrapping sql.ErrNoRows.
package repository

import (
	"context"
	"errors"

	"catalogapi/internal/model"
	"catalogapi/internal/query"
)

var (
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReference is returned when a write points at a row that does not exist.
	ErrReference = errors.New("referenced row does not exist")
	// ErrCheck is returned when a write violates a check constraint.
	ErrCheck = errors.New("check constraint violated")
)

// AccountRepository is the credential store.
type AccountRepository interface {
	// Create inserts an account. A taken username yields ErrDuplicate.
	Create(ctx context.Context, acc *model.Account) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, id int64) (*model.Account, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// RegionRepository stores regions.
type RegionRepository interface {
	query.Store[model.Region]
	Create(ctx context.Context, r *model.Region) (*model.Region, error)
	FindByID(ctx context.Context, id int64) (*model.Region, error)
	Update(ctx context.Context, r *model.Region) (*model.Region, error)
	Delete(ctx context.Context, id int64) error
}

// PatronRepository stores library patrons.
type PatronRepository interface {
	query.Store[model.Patron]
	Create(ctx context.Context, p *model.Patron) (*model.Patron, error)
	FindByID(ctx context.Context, id int64) (*model.Patron, error)
	Update(ctx context.Context, p *model.Patron) (*model.Patron, error)
	Delete(ctx context.Context, id int64) error
}

// PublisherRepository stores publishers.
type PublisherRepository interface {
	query.Store[model.Publisher]
	Create(ctx context.Context, p *model.Publisher) (*model.Publisher, error)
	FindByID(ctx context.Context, id int64) (*model.Publisher, error)
	Update(ctx context.Context, p *model.Publisher) (*model.Publisher, error)
	Delete(ctx context.Context, id int64) error
}

// BookRepository stores books together with their volumes.
type BookRepository interface {
	query.Store[model.Book]
	// Create inserts the book and its volumes in one transaction.
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	// Update writes the book's fields. A non-nil Volumes slice replaces the
	// stored volumes in the same transaction.
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	// SetCover stores the cover object key and returns the previous one.
	SetCover(ctx context.Context, id int64, key string) (previous *string, err error)
	Delete(ctx context.Context, id int64) error
}
