package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"libms/model"
	bookrepo "libms/repository/book"
	"libms/util/database"
)

type ErrCode string

const (
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrBarcodeTaken   ErrCode = "BARCODE_TAKEN"
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrNothingChanged ErrCode = "NOTHING_TO_UPDATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type SearchFilter = bookrepo.SearchFilter

// UpdateFields carries the whitelisted mutable book fields. Status is not
// among them; only the lifecycle coordinator moves status.
type UpdateFields struct {
	Title     *string
	Author    *string
	SubjectID *string
}

type Service interface {
	Create(ctx context.Context, title, author, subjectID, barcode string) (string, error)
	Detail(ctx context.Context, id string) (*model.Book, error)
	DetailByBarcode(ctx context.Context, barcode string) (*model.Book, error)
	Search(ctx context.Context, f SearchFilter) ([]model.Book, error)
	BySubject(ctx context.Context, subjectID string) ([]model.Book, error)
	Update(ctx context.Context, id string, f UpdateFields) error
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, title, author, subjectID, barcode string) (string, error) {
	title = strings.TrimSpace(title)
	barcode = strings.TrimSpace(barcode)
	if title == "" || barcode == "" {
		return "", makeErr(ErrBadInput)
	}

	b := &model.Book{
		Title:   title,
		Author:  author,
		Barcode: barcode,
		Status:  model.BookAvailable,
	}
	if subjectID != "" {
		b.SubjectID = &subjectID
	}
	if err := s.r.Create(ctx, b); err != nil {
		if database.IsUniqueViolation(err) {
			return "", makeErr(ErrBarcodeTaken)
		}
		return "", err
	}
	return b.ID, nil
}

func (s *service) Detail(ctx context.Context, id string) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) DetailByBarcode(ctx context.Context, barcode string) (*model.Book, error) {
	b, err := s.r.ByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Search(ctx context.Context, f SearchFilter) ([]model.Book, error) {
	return s.r.Search(ctx, f)
}

func (s *service) BySubject(ctx context.Context, subjectID string) ([]model.Book, error) {
	return s.r.BySubject(ctx, subjectID)
}

func (s *service) Update(ctx context.Context, id string, f UpdateFields) error {
	if f.Title == nil && f.Author == nil && f.SubjectID == nil {
		return makeErr(ErrNothingChanged)
	}
	if err := s.r.UpdateFields(ctx, id, f.Title, f.Author, f.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}
	return nil
}
