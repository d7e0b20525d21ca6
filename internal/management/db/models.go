package db

import (
	"time"

	"gorm.io/gorm"
)

// Book represents a catalogue record.
//
// The ISBN is allocated server-side when the record is first created and is
// never modified afterwards. The (name, author, publish_date) triple is the
// natural key used for duplicate detection on create; it carries a plain
// composite index, not a unique constraint, so concurrent creates racing on
// the same triple can still insert twice.
type Book struct {
	ISBN        string    `gorm:"primaryKey;type:varchar(13)" json:"isbn"`
	Name        string    `gorm:"type:varchar(255);not null;index:idx_books_natural_key,priority:1;index:idx_books_name" json:"name"`
	Author      string    `gorm:"type:varchar(255);not null;index:idx_books_natural_key,priority:2;index:idx_books_author" json:"author"`
	PublishDate string    `gorm:"type:varchar(10);not null;index:idx_books_natural_key,priority:3" json:"publish_date"` // YYYY-MM-DD
	PriceCents  int64     `gorm:"not null" json:"price_cents"`
	BookType    string    `gorm:"type:varchar(20);not null" json:"book_type"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for the Book model.
func (Book) TableName() string {
	return "books"
}

// BeforeCreate hook to set timestamps.
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate hook to refresh the update timestamp.
func (b *Book) BeforeUpdate(tx *gorm.DB) error {
	b.UpdatedAt = time.Now()
	return nil
}
