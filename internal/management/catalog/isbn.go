package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// isbnLength is the fixed length of allocated identifiers.
const isbnLength = 13

// ISBNGenerator produces candidate identifiers. Generation must not depend
// on record content, so allocation is insertion-order-independent.
type ISBNGenerator interface {
	Generate() string
}

// randomISBN13 generates a 13-character uppercase token from a UUID.
// Note: this is not a checksum-valid ISBN-13.
type randomISBN13 struct{}

func (randomISBN13) Generate() string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(token[:isbnLength])
}

// allocateISBN produces an identifier not already present in storage.
// On collision it regenerates exactly once; a second collision fails with
// ErrISBNExhausted rather than looping.
func (s *service) allocateISBN(ctx context.Context) (string, error) {
	isbn := s.isbnGen.Generate()
	exists, err := s.repo.ExistsByISBN(ctx, isbn)
	if err != nil {
		return "", err
	}
	if !exists {
		return isbn, nil
	}

	isbn = s.isbnGen.Generate()
	exists, err = s.repo.ExistsByISBN(ctx, isbn)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrISBNExhausted
	}
	return isbn, nil
}
