package repo

import (
	"context"
	"errors"

	"github.com/bookcatalogue/catalogue/internal/management/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrBookNotFound is returned when a single-record lookup misses.
var ErrBookNotFound = errors.New("book not found")

// BookRepository handles book catalogue persistence. Every method is a
// single database operation; multi-step sequences are composed above it.
type BookRepository struct {
	db  *db.DB
	log *zap.Logger
}

// NewBookRepository creates a new book repository.
func NewBookRepository(database *db.DB, logger *zap.Logger) *BookRepository {
	return &BookRepository{
		db:  database,
		log: logger,
	}
}

// FindByISBN retrieves a book by its ISBN.
func (r *BookRepository) FindByISBN(ctx context.Context, isbn string) (*db.Book, error) {
	var book db.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		r.log.Error("Failed to get book", zap.String("isbn", isbn), zap.Error(err))
		return nil, err
	}

	return &book, nil
}

// FindByNaturalKey retrieves the book matching the exact
// (name, author, publish date) triple.
func (r *BookRepository) FindByNaturalKey(ctx context.Context, name, author, publishDate string) (*db.Book, error) {
	var book db.Book
	err := r.db.WithContext(ctx).
		Where("name = ? AND author = ? AND publish_date = ?", name, author, publishDate).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		r.log.Error("Failed to look up book by natural key",
			zap.String("name", name),
			zap.String("author", author),
			zap.Error(err),
		)
		return nil, err
	}

	return &book, nil
}

// ExistsByISBN checks whether a book exists with the given ISBN.
func (r *BookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Book{}).Where("isbn = ?", isbn).Count(&count).Error
	if err != nil {
		r.log.Error("Failed to check book existence", zap.String("isbn", isbn), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// ExistsByNaturalKey checks whether a book exists with the given
// (name, author, publish date) triple.
func (r *BookRepository) ExistsByNaturalKey(ctx context.Context, name, author, publishDate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Book{}).
		Where("name = ? AND author = ? AND publish_date = ?", name, author, publishDate).
		Count(&count).Error
	if err != nil {
		r.log.Error("Failed to check natural key existence", zap.String("name", name), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// FindAll returns every book in the catalogue ordered by creation time.
func (r *BookRepository) FindAll(ctx context.Context) ([]*db.Book, error) {
	var books []*db.Book
	if err := r.db.WithContext(ctx).Order("created_at").Find(&books).Error; err != nil {
		r.log.Error("Failed to list books", zap.Error(err))
		return nil, err
	}
	return books, nil
}

// FindAllByName returns every book with the given name.
func (r *BookRepository) FindAllByName(ctx context.Context, name string) ([]*db.Book, error) {
	var books []*db.Book
	if err := r.db.WithContext(ctx).Where("name = ?", name).Order("created_at").Find(&books).Error; err != nil {
		r.log.Error("Failed to search books by name", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return books, nil
}

// FindAllByAuthor returns every book by the given author.
func (r *BookRepository) FindAllByAuthor(ctx context.Context, author string) ([]*db.Book, error) {
	var books []*db.Book
	if err := r.db.WithContext(ctx).Where("author = ?", author).Order("created_at").Find(&books).Error; err != nil {
		r.log.Error("Failed to search books by author", zap.String("author", author), zap.Error(err))
		return nil, err
	}
	return books, nil
}

// FindFirstByName returns the first book with the given name.
func (r *BookRepository) FindFirstByName(ctx context.Context, name string) (*db.Book, error) {
	var book db.Book
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("created_at").First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		r.log.Error("Failed to get first book by name", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return &book, nil
}

// FindFirstByAuthor returns the first book by the given author.
func (r *BookRepository) FindFirstByAuthor(ctx context.Context, author string) (*db.Book, error) {
	var book db.Book
	err := r.db.WithContext(ctx).Where("author = ?", author).Order("created_at").First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		r.log.Error("Failed to get first book by author", zap.String("author", author), zap.Error(err))
		return nil, err
	}
	return &book, nil
}

// Insert persists a new book.
func (r *BookRepository) Insert(ctx context.Context, book *db.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		r.log.Error("Failed to insert book", zap.String("isbn", book.ISBN), zap.Error(err))
		return err
	}

	r.log.Info("Book inserted", zap.String("isbn", book.ISBN), zap.String("name", book.Name))
	return nil
}

// Update persists every column of an existing book, keyed by ISBN.
func (r *BookRepository) Update(ctx context.Context, book *db.Book) error {
	result := r.db.WithContext(ctx).Model(&db.Book{}).Where("isbn = ?", book.ISBN).Updates(map[string]interface{}{
		"name":         book.Name,
		"author":       book.Author,
		"publish_date": book.PublishDate,
		"price_cents":  book.PriceCents,
		"book_type":    book.BookType,
	})
	if result.Error != nil {
		r.log.Error("Failed to update book", zap.String("isbn", book.ISBN), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}

	r.log.Info("Book updated", zap.String("isbn", book.ISBN))
	return nil
}

// DeleteByISBN removes a book permanently.
func (r *BookRepository) DeleteByISBN(ctx context.Context, isbn string) error {
	result := r.db.WithContext(ctx).Where("isbn = ?", isbn).Delete(&db.Book{})
	if result.Error != nil {
		r.log.Error("Failed to delete book", zap.String("isbn", isbn), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}

	r.log.Info("Book deleted", zap.String("isbn", isbn))
	return nil
}
