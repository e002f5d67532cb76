package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalogapi/internal/apperror"
	"catalogapi/internal/model"
	"catalogapi/internal/query"
	"catalogapi/internal/repository"
	"catalogapi/internal/storage"
)

// ErrCoversDisabled is returned by cover operations when no object store is configured.
var ErrCoversDisabled = errors.New("cover storage is not configured")

// CoverURLExpiry is the lifetime of presigned cover links.
const CoverURLExpiry = 15 * time.Minute

// CoverUpload is an image streamed from a multipart request.
type CoverUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// BookService adds cover photo handling to the book CatalogService.
type BookService interface {
	CatalogService[model.Book]

	// UploadCover stores the image in object storage and points the book at
	// it. A previous cover object is removed.
	UploadCover(ctx context.Context, id int64, in CoverUpload) (*model.Book, error)

	// CoverURL returns a time-limited download link for the book's cover.
	CoverURL(ctx context.Context, id int64) (string, error)
}

type bookService struct {
	*catalogService[model.Book]
	books repository.BookRepository
	store storage.Storage
	log   *slog.Logger
}

// NewBookService constructs a BookService. store may be nil, which disables covers.
func NewBookService(repo repository.BookRepository, store storage.Storage, defaults query.Defaults, log *slog.Logger) BookService {
	if log == nil {
		log = slog.Default()
	}
	return &bookService{
		catalogService: newCatalogService[model.Book](repo, entity[model.Book]{
			resource:       query.Book,
			validate:       (*model.Book).Validate,
			setID:          func(b *model.Book, id int64) { b.ID = id },
			uniqueField:    "volumes",
			referenceField: "publisher",
		}, defaults),
		books: repo,
		store: store,
		log:   log,
	}
}

// Delete removes the book and then its cover object, if any. A failed object
// removal is logged and does not fail the request.
func (s *bookService) Delete(ctx context.Context, id int64) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.catalogService.Delete(ctx, id); err != nil {
		return err
	}
	if b.CoverPhoto != nil && s.store != nil {
		s.removeObject(ctx, *b.CoverPhoto)
	}
	return nil
}

func (s *bookService) UploadCover(ctx context.Context, id int64, in CoverUpload) (*model.Book, error) {
	if s.store == nil {
		return nil, apperror.Unavailable(ErrCoversDisabled)
	}
	if in.Reader == nil {
		return nil, apperror.Invalid("file", "is required")
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, apperror.Invalid("file", "must be an image")
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := filepath.ToSlash(filepath.Join("covers", uuid.NewString()+strings.ToLower(filepath.Ext(in.Filename))))
	info, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return nil, apperror.Unavailable(fmt.Errorf("upload cover: %w", err))
	}

	previous, err := s.books.SetCover(ctx, id, info.Key)
	if err != nil {
		// Rollback: the row never pointed at the new object.
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			s.log.ErrorContext(ctx, "cover_rollback_failed", slog.String("key", info.Key), slog.String("error", delErr.Error()))
		}
		return nil, s.storeError(id, err)
	}
	if previous != nil && *previous != info.Key {
		s.removeObject(ctx, *previous)
	}

	b.CoverPhoto = &info.Key
	return b, nil
}

func (s *bookService) CoverURL(ctx context.Context, id int64) (string, error) {
	if s.store == nil {
		return "", apperror.Unavailable(ErrCoversDisabled)
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if b.CoverPhoto == nil {
		return "", fmt.Errorf("book %d cover: %w", id, apperror.ErrNotFound)
	}
	u, err := s.store.PresignGet(ctx, *b.CoverPhoto, CoverURLExpiry)
	if err != nil {
		return "", apperror.Unavailable(fmt.Errorf("presign cover: %w", err))
	}
	return u, nil
}

func (s *bookService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "cover_delete_failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
