package api

import (
	"math"
	"time"

	"github.com/bookcatalogue/catalogue/internal/web/client"
)

// displayDateLayout is the date format shown to and accepted from users.
// The management service speaks ISO dates; conversion happens here.
const displayDateLayout = "02/01/2006"

const wireDateLayout = "2006-01-02"

// defaultAuthor is filled in on create; the form has no author field but
// the management service requires one.
const defaultAuthor = "Unknown"

const maxFormNameLength = 255

// BookTypes lists the accepted book types, for form rendering.
var BookTypes = []string{"HARD_COVER", "SOFT_COVER", "EBOOK"}

// BookForm is the user-facing editing payload. Price is in currency units
// (e.g. 29.99), dates in dd/MM/yyyy.
type BookForm struct {
	ISBN        string   `json:"isbn"`
	Name        string   `json:"name"`
	PublishDate string   `json:"publish_date"`
	Price       *float64 `json:"price"`
	BookType    string   `json:"book_type"`
}

// Validate returns field-level errors keyed by form field name.
func (f *BookForm) Validate() map[string]string {
	fields := make(map[string]string)

	if f.Name == "" {
		fields["name"] = "Name is required"
	} else if len(f.Name) > maxFormNameLength {
		fields["name"] = "Name must not exceed 255 characters"
	}

	if f.PublishDate == "" {
		fields["publish_date"] = "Publish date is required"
	} else if _, err := time.Parse(displayDateLayout, f.PublishDate); err != nil {
		fields["publish_date"] = "Publish date must be in dd/MM/yyyy format"
	}

	if f.Price == nil {
		fields["price"] = "Price is required"
	} else if *f.Price < 0 {
		fields["price"] = "Price must be greater than or equal to 0.00"
	} else if *f.Price > 99_999_999.99 {
		fields["price"] = "Price must have at most 8 integer digits"
	}

	if f.BookType == "" {
		fields["book_type"] = "Book type is required"
	} else if !validBookType(f.BookType) {
		fields["book_type"] = "Book type must be one of HARD_COVER, SOFT_COVER, EBOOK"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func validBookType(t string) bool {
	for _, bt := range BookTypes {
		if t == bt {
			return true
		}
	}
	return false
}

// toCreateRequest maps a validated form to a create request.
func toCreateRequest(f *BookForm) client.BookCreateRequest {
	return client.BookCreateRequest{
		Name:        f.Name,
		Author:      defaultAuthor,
		PublishDate: toWireDate(f.PublishDate),
		PriceCents:  toCents(*f.Price),
		BookType:    f.BookType,
	}
}

// toPatch maps a validated form to a sparse patch. Every form field is
// present after validation, so all patchable fields are set; the author is
// deliberately left untouched.
func toPatch(f *BookForm) client.BookPatch {
	date := toWireDate(f.PublishDate)
	cents := toCents(*f.Price)
	return client.BookPatch{
		Name:        &f.Name,
		PublishDate: &date,
		PriceCents:  &cents,
		BookType:    &f.BookType,
	}
}

// toForm maps a catalogue record back to the editing form.
func toForm(b *client.BookResponse) BookForm {
	price := fromCents(b.PriceCents)
	return BookForm{
		ISBN:        b.ISBN,
		Name:        b.Name,
		PublishDate: toDisplayDate(b.PublishDate),
		Price:       &price,
		BookType:    b.BookType,
	}
}

// toDisplayDate converts an ISO wire date to dd/MM/yyyy. Unparseable
// values pass through unchanged.
func toDisplayDate(wire string) string {
	t, err := time.Parse(wireDateLayout, wire)
	if err != nil {
		return wire
	}
	return t.Format(displayDateLayout)
}

func toWireDate(display string) string {
	t, err := time.Parse(displayDateLayout, display)
	if err != nil {
		return display
	}
	return t.Format(wireDateLayout)
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
