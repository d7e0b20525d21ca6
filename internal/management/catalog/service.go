package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/bookcatalogue/catalogue/internal/management/db"
	"github.com/bookcatalogue/catalogue/internal/management/repo"
	"go.uber.org/zap"
)

// Book types accepted by the catalogue.
const (
	TypeHardCover = "HARD_COVER"
	TypeSoftCover = "SOFT_COVER"
	TypeEbook     = "EBOOK"
)

// IsValidBookType reports whether t is one of the accepted book types.
func IsValidBookType(t string) bool {
	return t == TypeHardCover || t == TypeSoftCover || t == TypeEbook
}

// CreateBookInput carries the attributes of a book to create. All fields
// are required and validated before reaching the service.
type CreateBookInput struct {
	Name        string
	Author      string
	PublishDate string // YYYY-MM-DD
	PriceCents  int64
	BookType    string
}

// BookPatch is a sparse update: nil fields leave the corresponding
// attribute untouched. The ISBN is not patchable.
type BookPatch struct {
	Name        *string
	Author      *string
	PublishDate *string
	PriceCents  *int64
	BookType    *string
}

// Repository is the narrow persistence contract the catalogue depends on.
// Each method is a single atomic operation; single-record lookups signal a
// miss with repo.ErrBookNotFound.
type Repository interface {
	FindByISBN(ctx context.Context, isbn string) (*db.Book, error)
	FindByNaturalKey(ctx context.Context, name, author, publishDate string) (*db.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	ExistsByNaturalKey(ctx context.Context, name, author, publishDate string) (bool, error)
	FindAll(ctx context.Context) ([]*db.Book, error)
	FindAllByName(ctx context.Context, name string) ([]*db.Book, error)
	FindAllByAuthor(ctx context.Context, author string) ([]*db.Book, error)
	FindFirstByName(ctx context.Context, name string) (*db.Book, error)
	FindFirstByAuthor(ctx context.Context, author string) (*db.Book, error)
	Insert(ctx context.Context, book *db.Book) error
	Update(ctx context.Context, book *db.Book) error
	DeleteByISBN(ctx context.Context, isbn string) error
}

// Service implements the catalogue read and write operations.
type Service interface {
	GetAll(ctx context.Context) ([]*db.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*db.Book, error)
	GetFirstByName(ctx context.Context, name string) (*db.Book, error)
	GetFirstByAuthor(ctx context.Context, author string) (*db.Book, error)
	SearchByName(ctx context.Context, name string) ([]*db.Book, error)
	SearchByAuthor(ctx context.Context, author string) ([]*db.Book, error)
	Create(ctx context.Context, input CreateBookInput) (*db.Book, error)
	Update(ctx context.Context, isbn string, patch BookPatch) (*db.Book, error)
	Delete(ctx context.Context, isbn string) error
}

type service struct {
	repo    Repository
	isbnGen ISBNGenerator
	log     *zap.Logger
}

// NewService creates a catalogue service with the default ISBN generator.
func NewService(r Repository, log *zap.Logger) Service {
	return &service{repo: r, isbnGen: randomISBN13{}, log: log}
}

// NewServiceWithGenerator creates a catalogue service with a custom ISBN
// generator.
func NewServiceWithGenerator(r Repository, gen ISBNGenerator, log *zap.Logger) Service {
	return &service{repo: r, isbnGen: gen, log: log}
}

// GetAll returns every book. An empty catalogue is not an error.
func (s *service) GetAll(ctx context.Context) ([]*db.Book, error) {
	return s.repo.FindAll(ctx)
}

// GetByISBN returns the book with the given ISBN.
func (s *service) GetByISBN(ctx context.Context, isbn string) (*db.Book, error) {
	value, err := requireText(isbn, "isbn")
	if err != nil {
		return nil, err
	}

	book, err := s.repo.FindByISBN(ctx, value)
	if errors.Is(err, repo.ErrBookNotFound) {
		return nil, &NotFoundError{ISBN: value}
	}
	return book, err
}

// GetFirstByName returns the first book with the given name, or nil if
// none exists.
func (s *service) GetFirstByName(ctx context.Context, name string) (*db.Book, error) {
	value, err := requireText(name, "name")
	if err != nil {
		return nil, err
	}

	book, err := s.repo.FindFirstByName(ctx, value)
	if errors.Is(err, repo.ErrBookNotFound) {
		return nil, nil
	}
	return book, err
}

// GetFirstByAuthor returns the first book by the given author, or nil if
// none exists.
func (s *service) GetFirstByAuthor(ctx context.Context, author string) (*db.Book, error) {
	value, err := requireText(author, "author")
	if err != nil {
		return nil, err
	}

	book, err := s.repo.FindFirstByAuthor(ctx, value)
	if errors.Is(err, repo.ErrBookNotFound) {
		return nil, nil
	}
	return book, err
}

// SearchByName returns every book with the given name, possibly none.
func (s *service) SearchByName(ctx context.Context, name string) ([]*db.Book, error) {
	value, err := requireText(name, "name")
	if err != nil {
		return nil, err
	}
	return s.repo.FindAllByName(ctx, value)
}

// SearchByAuthor returns every book by the given author, possibly none.
func (s *service) SearchByAuthor(ctx context.Context, author string) ([]*db.Book, error) {
	value, err := requireText(author, "author")
	if err != nil {
		return nil, err
	}
	return s.repo.FindAllByAuthor(ctx, value)
}

// Create adds a book, or merges into an existing one when a book with the
// same name, author and publish date is already present.
//
// On the merge branch only price and book type are overwritten; the ISBN
// is preserved. On the insert branch a fresh ISBN is allocated. Either way
// exactly one write is issued. The lookup and the write are not held under
// any shared isolation, so two concurrent creates with the same natural
// key can both take the insert branch.
func (s *service) Create(ctx context.Context, input CreateBookInput) (*db.Book, error) {
	existing, err := s.repo.FindByNaturalKey(ctx, input.Name, input.Author, input.PublishDate)
	if err != nil && !errors.Is(err, repo.ErrBookNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.PriceCents = input.PriceCents
		existing.BookType = input.BookType
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.log.Info("Create merged into existing book", zap.String("isbn", existing.ISBN))
		return existing, nil
	}

	isbn, err := s.allocateISBN(ctx)
	if err != nil {
		return nil, err
	}

	book := &db.Book{
		ISBN:        isbn,
		Name:        input.Name,
		Author:      input.Author,
		PublishDate: input.PublishDate,
		PriceCents:  input.PriceCents,
		BookType:    input.BookType,
	}
	if err := s.repo.Insert(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// Update applies a sparse patch to an existing book and returns the merged
// record. Absent fields are left untouched; the ISBN is never settable.
// Reapplying the same patch yields the same result.
func (s *service) Update(ctx context.Context, isbn string, patch BookPatch) (*db.Book, error) {
	value, err := requireText(isbn, "isbn")
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByISBN(ctx, value)
	if errors.Is(err, repo.ErrBookNotFound) {
		return nil, &NotFoundError{ISBN: value}
	}
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Author != nil {
		existing.Author = *patch.Author
	}
	if patch.PublishDate != nil {
		existing.PublishDate = *patch.PublishDate
	}
	if patch.PriceCents != nil {
		existing.PriceCents = *patch.PriceCents
	}
	if patch.BookType != nil {
		existing.BookType = *patch.BookType
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

// Delete removes a book permanently. The existence probe runs before the
// delete so a missing book always reports as not found instead of a silent
// no-op; a second delete of the same ISBN therefore fails.
func (s *service) Delete(ctx context.Context, isbn string) error {
	value, err := requireText(isbn, "isbn")
	if err != nil {
		return err
	}

	exists, err := s.repo.ExistsByISBN(ctx, value)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{ISBN: value}
	}

	return s.repo.DeleteByISBN(ctx, value)
}

// requireText validates that a free-text key is non-empty.
func requireText(value, field string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", &BadRequestError{Field: field}
	}
	return value, nil
}
