// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"database/sql"
	"testing"

	"libms/model"
	bookrepo "libms/repository/book"
	booksvc "libms/service/book"
)

type repoMock struct {
	createFn       func(ctx context.Context, b *model.Book) error
	byIDFn         func(ctx context.Context, id string) (*model.Book, error)
	byBarcodeFn    func(ctx context.Context, barcode string) (*model.Book, error)
	searchFn       func(ctx context.Context, f bookrepo.SearchFilter) ([]model.Book, error)
	updateFieldsFn func(ctx context.Context, id string, title, author, subjectID *string) error
}

var _ bookrepo.Repo = (*repoMock)(nil)

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) ByID(ctx context.Context, id string) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ByBarcode(ctx context.Context, barcode string) (*model.Book, error) {
	return m.byBarcodeFn(ctx, barcode)
}
func (m *repoMock) Search(ctx context.Context, f bookrepo.SearchFilter) ([]model.Book, error) {
	return m.searchFn(ctx, f)
}
func (m *repoMock) BySubject(ctx context.Context, subjectID string) ([]model.Book, error) {
	return m.searchFn(ctx, bookrepo.SearchFilter{SubjectID: subjectID})
}
func (m *repoMock) UpdateFields(ctx context.Context, id string, title, author, subjectID *string) error {
	return m.updateFieldsFn(ctx, id, title, author, subjectID)
}
func (m *repoMock) StatusForUpdate(ctx context.Context, tx *sql.Tx, id string) (model.BookStatus, error) {
	panic("not used")
}
func (m *repoMock) SetStatus(ctx context.Context, tx *sql.Tx, id string, from, to model.BookStatus) error {
	panic("not used")
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), "", "author", "", "BC-1"); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("expected BAD_INPUT for empty title, got %v", err)
	}
	if _, err := s.Create(context.Background(), "title", "author", "", "  "); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("expected BAD_INPUT for empty barcode, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.Title != "Clean Code" || b.Barcode != "BC-1" {
				t.Fatalf("bad args: %+v", b)
			}
			if b.SubjectID == nil || *b.SubjectID != "subj-1" {
				t.Fatalf("subject id not set: %+v", b.SubjectID)
			}
			b.ID = "book-42"
			return nil
		},
	}
	s := booksvc.New(m)
	id, err := s.Create(context.Background(), "  Clean Code ", "Martin", "subj-1", " BC-1 ")
	if err != nil || id != "book-42" {
		t.Fatalf("got id=%v err=%v; want book-42 nil", id, err)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id string) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)
	if _, err := s.Detail(context.Background(), "missing"); booksvc.Code(err) != booksvc.ErrBookNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND, got %v", err)
	}
}

func TestDetailByBarcode_NotFound(t *testing.T) {
	m := &repoMock{
		byBarcodeFn: func(ctx context.Context, barcode string) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m)
	if _, err := s.DetailByBarcode(context.Background(), "NOPE"); booksvc.Code(err) != booksvc.ErrBookNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if err := s.Update(context.Background(), "id", booksvc.UpdateFields{}); booksvc.Code(err) != booksvc.ErrNothingChanged {
		t.Fatalf("expected NOTHING_TO_UPDATE, got %v", err)
	}

	title := "New"
	m := &repoMock{
		updateFieldsFn: func(ctx context.Context, id string, gotTitle, author, subjectID *string) error {
			if id != "id" || gotTitle == nil || *gotTitle != "New" || author != nil {
				t.Fatalf("bad args: id=%v title=%v author=%v", id, gotTitle, author)
			}
			return nil
		},
	}
	if err := booksvc.New(m).Update(context.Background(), "id", booksvc.UpdateFields{Title: &title}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	m.updateFieldsFn = func(ctx context.Context, id string, title, author, subjectID *string) error {
		return sql.ErrNoRows
	}
	if err := booksvc.New(m).Update(context.Background(), "missing", booksvc.UpdateFields{Title: &title}); booksvc.Code(err) != booksvc.ErrBookNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND, got %v", err)
	}
}

func TestSearchPassThrough(t *testing.T) {
	m := &repoMock{
		searchFn: func(ctx context.Context, f bookrepo.SearchFilter) ([]model.Book, error) {
			if f.Search != "algo" {
				t.Fatalf("filter not forwarded: %+v", f)
			}
			return []model.Book{{Title: "Algorithms"}}, nil
		},
	}
	s := booksvc.New(m)
	out, err := s.Search(context.Background(), booksvc.SearchFilter{Search: "algo"})
	if err != nil || len(out) != 1 {
		t.Fatalf("got %v %v; want one row", out, err)
	}
}
