package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"libms/model"
	"libms/util/database"
)

// ErrStatusConflict means a guarded status transition found the book in a
// different state than expected. The caller treats this as an invalid state.
var ErrStatusConflict = errors.New("book status conflict")

type SearchFilter struct {
	SubjectID string
	Status    string
	Search    string // matches title or author
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id string) (*model.Book, error)
	ByBarcode(ctx context.Context, barcode string) (*model.Book, error)
	Search(ctx context.Context, f SearchFilter) ([]model.Book, error)
	BySubject(ctx context.Context, subjectID string) ([]model.Book, error)
	// UpdateFields applies the whitelisted fields {title, author, subject_id}.
	UpdateFields(ctx context.Context, id string, title, author, subjectID *string) error

	// StatusForUpdate reads the current status inside tx so the transition is
	// decided against a fresh value.
	StatusForUpdate(ctx context.Context, tx *sql.Tx, id string) (model.BookStatus, error)
	// SetStatus performs a guarded transition from -> to inside tx. It returns
	// ErrStatusConflict when the book is no longer in the expected state.
	SetStatus(ctx context.Context, tx *sql.Tx, id string, from, to model.BookStatus) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	b.ID = uuid.NewString()
	if b.Status == "" {
		b.Status = model.BookAvailable
	}
	b.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO books (book_id, subject_id, title, author, barcode, status, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		b.ID, b.SubjectID, b.Title, b.Author, b.Barcode, b.Status,
		database.FormatTime(b.CreatedAt),
	)
	return err
}

const bookSelect = `
	SELECT b.book_id, b.subject_id, b.title, b.author, b.barcode, b.status, b.created_at,
	       s.name AS subject_name, c.name AS course_name
	FROM books b
	LEFT JOIN subjects s ON b.subject_id = s.subject_id
	LEFT JOIN courses c ON s.course_id = c.course_id`

func scanBook(scan func(dest ...any) error) (*model.Book, error) {
	b := &model.Book{}
	var createdAt string
	if err := scan(&b.ID, &b.SubjectID, &b.Title, &b.Author, &b.Barcode, &b.Status, &createdAt,
		&b.SubjectName, &b.CourseName); err != nil {
		return nil, err
	}
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = t
	return b, nil
}

func (r *repo) ByID(ctx context.Context, id string) (*model.Book, error) {
	row := r.db.QueryRowContext(ctx, bookSelect+` WHERE b.book_id = ?`, id)
	return scanBook(row.Scan)
}

func (r *repo) ByBarcode(ctx context.Context, barcode string) (*model.Book, error) {
	row := r.db.QueryRowContext(ctx, bookSelect+` WHERE b.barcode = ?`, barcode)
	return scanBook(row.Scan)
}

func (r *repo) Search(ctx context.Context, f SearchFilter) ([]model.Book, error) {
	q := bookSelect + ` WHERE 1=1`
	var params []any
	if f.SubjectID != "" {
		q += ` AND b.subject_id = ?`
		params = append(params, f.SubjectID)
	}
	if f.Status != "" {
		q += ` AND b.status = ?`
		params = append(params, f.Status)
	}
	if f.Search != "" {
		q += ` AND (b.title LIKE ? OR b.author LIKE ?)`
		term := "%" + f.Search + "%"
		params = append(params, term, term)
	}
	q += ` ORDER BY b.title`

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) BySubject(ctx context.Context, subjectID string) ([]model.Book, error) {
	return r.Search(ctx, SearchFilter{SubjectID: subjectID})
}

func (r *repo) UpdateFields(ctx context.Context, id string, title, author, subjectID *string) error {
	q := `UPDATE books SET `
	var sets []string
	var params []any
	if title != nil {
		sets = append(sets, "title = ?")
		params = append(params, *title)
	}
	if author != nil {
		sets = append(sets, "author = ?")
		params = append(params, *author)
	}
	if subjectID != nil {
		sets = append(sets, "subject_id = ?")
		params = append(params, *subjectID)
	}
	if len(sets) == 0 {
		return errors.New("no fields to update")
	}
	for i, s := range sets {
		if i > 0 {
			q += ", "
		}
		q += s
	}
	q += ` WHERE book_id = ?`
	params = append(params, id)

	res, err := r.db.ExecContext(ctx, q, params...)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) StatusForUpdate(ctx context.Context, tx *sql.Tx, id string) (model.BookStatus, error) {
	var st model.BookStatus
	err := tx.QueryRowContext(ctx, `
		SELECT status FROM books WHERE book_id = ?`, id,
	).Scan(&st)
	return st, err
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, id string, from, to model.BookStatus) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE books
		SET status = ?
		WHERE book_id = ?
		AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrStatusConflict
	}
	return nil
}
