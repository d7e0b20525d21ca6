package client

// BookResponse is a catalogue record as served by the management service.
type BookResponse struct {
	ISBN        string `json:"isbn"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	PublishDate string `json:"publish_date"` // YYYY-MM-DD
	PriceCents  int64  `json:"price_cents"`
	BookType    string `json:"book_type"`
}

// BookCreateRequest is the create payload sent to the management service.
type BookCreateRequest struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	PublishDate string `json:"publish_date"`
	PriceCents  int64  `json:"price_cents"`
	BookType    string `json:"book_type"`
}

// BookPatch is the sparse update payload sent to the management service.
// Absent fields are omitted from the request body entirely.
type BookPatch struct {
	Name        *string `json:"name,omitempty"`
	Author      *string `json:"author,omitempty"`
	PublishDate *string `json:"publish_date,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	BookType    *string `json:"book_type,omitempty"`
}
