package api

import (
	"fmt"
	"time"

	"github.com/bookcatalogue/catalogue/internal/management/catalog"
	"github.com/bookcatalogue/catalogue/internal/management/db"
)

// maxPriceCents bounds prices to 8 integer digits and 2 fraction digits.
const maxPriceCents = int64(9_999_999_999)

const dateLayout = "2006-01-02"

// BookRequest is the payload for creating a book. The ISBN is allocated
// server-side and cannot be supplied.
type BookRequest struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	PublishDate string `json:"publish_date"` // YYYY-MM-DD
	PriceCents  *int64 `json:"price_cents"`
	BookType    string `json:"book_type"`
}

// BookPatchRequest is a sparse update payload. Absent fields mean "no
// change"; the ISBN is not patchable.
type BookPatchRequest struct {
	Name        *string `json:"name"`
	Author      *string `json:"author"`
	PublishDate *string `json:"publish_date"`
	PriceCents  *int64  `json:"price_cents"`
	BookType    *string `json:"book_type"`
}

// BookResponse is the wire representation of a catalogue record.
type BookResponse struct {
	ISBN        string `json:"isbn"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	PublishDate string `json:"publish_date"`
	PriceCents  int64  `json:"price_cents"`
	BookType    string `json:"book_type"`
}

// Validate checks a create payload. Every field is required.
func (r *BookRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Author == "" {
		return fmt.Errorf("author is required")
	}
	if err := validateDate(r.PublishDate); err != nil {
		return err
	}
	if r.PriceCents == nil {
		return fmt.Errorf("price_cents is required")
	}
	if err := validatePrice(*r.PriceCents); err != nil {
		return err
	}
	if !catalog.IsValidBookType(r.BookType) {
		return fmt.Errorf("book_type must be one of HARD_COVER, SOFT_COVER, EBOOK")
	}
	return nil
}

// Validate checks the fields present in a patch payload.
func (r *BookPatchRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if r.Author != nil && *r.Author == "" {
		return fmt.Errorf("author must not be empty")
	}
	if r.PublishDate != nil {
		if err := validateDate(*r.PublishDate); err != nil {
			return err
		}
	}
	if r.PriceCents != nil {
		if err := validatePrice(*r.PriceCents); err != nil {
			return err
		}
	}
	if r.BookType != nil && !catalog.IsValidBookType(*r.BookType) {
		return fmt.Errorf("book_type must be one of HARD_COVER, SOFT_COVER, EBOOK")
	}
	return nil
}

func validateDate(value string) error {
	if value == "" {
		return fmt.Errorf("publish_date is required")
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return fmt.Errorf("publish_date must be in YYYY-MM-DD format")
	}
	return nil
}

func validatePrice(cents int64) error {
	if cents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	if cents > maxPriceCents {
		return fmt.Errorf("price_cents must not exceed %d", maxPriceCents)
	}
	return nil
}

// toCreateInput maps a create payload to the service input, field by field.
func toCreateInput(r *BookRequest) catalog.CreateBookInput {
	return catalog.CreateBookInput{
		Name:        r.Name,
		Author:      r.Author,
		PublishDate: r.PublishDate,
		PriceCents:  *r.PriceCents,
		BookType:    r.BookType,
	}
}

// toPatch maps a patch payload to the service patch, field by field.
func toPatch(r *BookPatchRequest) catalog.BookPatch {
	return catalog.BookPatch{
		Name:        r.Name,
		Author:      r.Author,
		PublishDate: r.PublishDate,
		PriceCents:  r.PriceCents,
		BookType:    r.BookType,
	}
}

// toResponse maps a record to its wire representation, field by field.
func toResponse(b *db.Book) BookResponse {
	return BookResponse{
		ISBN:        b.ISBN,
		Name:        b.Name,
		Author:      b.Author,
		PublishDate: b.PublishDate,
		PriceCents:  b.PriceCents,
		BookType:    b.BookType,
	}
}

func toResponses(books []*db.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toResponse(b)
	}
	return out
}
