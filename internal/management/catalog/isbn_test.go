package catalog

import (
	"context"
	"regexp"
	"testing"

	"github.com/bookcatalogue/catalogue/internal/management/db"
	"github.com/bookcatalogue/catalogue/internal/management/repo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// scriptedGen returns a fixed sequence of candidates.
type scriptedGen struct {
	candidates []string
	next       int
}

func (g *scriptedGen) Generate() string {
	c := g.candidates[g.next]
	g.next++
	return c
}

// fakeRepo is an in-memory Repository for allocator and race tests.
type fakeRepo struct {
	byISBN         map[string]*db.Book
	missNaturalKey bool
	inserted       []*db.Book
}

func newFakeRepo(seedISBNs ...string) *fakeRepo {
	f := &fakeRepo{byISBN: make(map[string]*db.Book)}
	for _, isbn := range seedISBNs {
		f.byISBN[isbn] = &db.Book{ISBN: isbn}
	}
	return f
}

func (f *fakeRepo) FindByISBN(ctx context.Context, isbn string) (*db.Book, error) {
	if b, ok := f.byISBN[isbn]; ok {
		return b, nil
	}
	return nil, repo.ErrBookNotFound
}

func (f *fakeRepo) FindByNaturalKey(ctx context.Context, name, author, publishDate string) (*db.Book, error) {
	if f.missNaturalKey {
		return nil, repo.ErrBookNotFound
	}
	for _, b := range f.byISBN {
		if b.Name == name && b.Author == author && b.PublishDate == publishDate {
			return b, nil
		}
	}
	return nil, repo.ErrBookNotFound
}

func (f *fakeRepo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	_, ok := f.byISBN[isbn]
	return ok, nil
}

func (f *fakeRepo) ExistsByNaturalKey(ctx context.Context, name, author, publishDate string) (bool, error) {
	_, err := f.FindByNaturalKey(ctx, name, author, publishDate)
	return err == nil, nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]*db.Book, error)  { return f.inserted, nil }
func (f *fakeRepo) FindAllByName(ctx context.Context, name string) ([]*db.Book, error) {
	return nil, nil
}
func (f *fakeRepo) FindAllByAuthor(ctx context.Context, author string) ([]*db.Book, error) {
	return nil, nil
}
func (f *fakeRepo) FindFirstByName(ctx context.Context, name string) (*db.Book, error) {
	return nil, repo.ErrBookNotFound
}
func (f *fakeRepo) FindFirstByAuthor(ctx context.Context, author string) (*db.Book, error) {
	return nil, repo.ErrBookNotFound
}

func (f *fakeRepo) Insert(ctx context.Context, book *db.Book) error {
	f.byISBN[book.ISBN] = book
	f.inserted = append(f.inserted, book)
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, book *db.Book) error {
	if _, ok := f.byISBN[book.ISBN]; !ok {
		return repo.ErrBookNotFound
	}
	f.byISBN[book.ISBN] = book
	return nil
}

func (f *fakeRepo) DeleteByISBN(ctx context.Context, isbn string) error {
	if _, ok := f.byISBN[isbn]; !ok {
		return repo.ErrBookNotFound
	}
	delete(f.byISBN, isbn)
	return nil
}

func TestGenerateISBNFormat(t *testing.T) {
	gen := randomISBN13{}
	pattern := regexp.MustCompile(`^[0-9A-F]{13}$`)

	for i := 0; i < 100; i++ {
		isbn := gen.Generate()
		assert.Len(t, isbn, isbnLength)
		assert.Regexp(t, pattern, isbn)
	}
}

func TestAllocateISBNFirstCandidateFree(t *testing.T) {
	s := &service{
		repo:    newFakeRepo(),
		isbnGen: &scriptedGen{candidates: []string{"CANDIDATE0001"}},
		log:     zap.NewNop(),
	}

	isbn, err := s.allocateISBN(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "CANDIDATE0001", isbn)
}

func TestAllocateISBNRetriesOnceOnCollision(t *testing.T) {
	s := &service{
		repo:    newFakeRepo("CANDIDATE0001"),
		isbnGen: &scriptedGen{candidates: []string{"CANDIDATE0001", "CANDIDATE0002"}},
		log:     zap.NewNop(),
	}

	isbn, err := s.allocateISBN(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "CANDIDATE0002", isbn)
}

func TestAllocateISBNConflictAfterTwoCollisions(t *testing.T) {
	s := &service{
		repo:    newFakeRepo("CANDIDATE0001", "CANDIDATE0002"),
		isbnGen: &scriptedGen{candidates: []string{"CANDIDATE0001", "CANDIDATE0002"}},
		log:     zap.NewNop(),
	}

	_, err := s.allocateISBN(context.Background())
	assert.ErrorIs(t, err, ErrISBNExhausted)
}

// TestCreateRaceAllocatesTwice documents the accepted race: two creates
// with the same natural key that both observe a miss before either writes
// both take the insert branch and allocate distinct identifiers. The
// lookup-then-write sequence carries no cross-operation isolation.
func TestCreateRaceAllocatesTwice(t *testing.T) {
	f := newFakeRepo()
	f.missNaturalKey = true
	s := NewService(f, zap.NewNop())

	input := CreateBookInput{
		Name:        "Dune",
		Author:      "Herbert",
		PublishDate: "1965-08-01",
		PriceCents:  2999,
		BookType:    TypeHardCover,
	}

	first, err := s.Create(context.Background(), input)
	assert.NoError(t, err)
	second, err := s.Create(context.Background(), input)
	assert.NoError(t, err)

	assert.Len(t, f.inserted, 2)
	assert.NotEqual(t, first.ISBN, second.ISBN)
}
