package preorderrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"libms/model"
	"libms/util/database"
)

type Repo interface {
	// Reserve inserts an Open preorder for the book inside tx.
	Reserve(ctx context.Context, tx *sql.Tx, bookID, userID string, payment model.PaymentStatus, expiry time.Time) (string, error)
	// OpenByBook returns the single Open preorder for the book, or nil.
	OpenByBook(ctx context.Context, tx *sql.Tx, bookID string) (*model.Preorder, error)
	MarkFulfilled(ctx context.Context, tx *sql.Tx, id string) error
	MarkLapsed(ctx context.Context, tx *sql.Tx, id string) error
	// ExpiredOpen lists Open preorders whose expiry has passed.
	ExpiredOpen(ctx context.Context, now time.Time) ([]model.Preorder, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Reserve(ctx context.Context, tx *sql.Tx, bookID, userID string, payment model.PaymentStatus, expiry time.Time) (string, error) {
	id := uuid.NewString()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO preorders (preorder_id, book_id, user_id, payment_status, status, expiry_time, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		id, bookID, userID, payment, model.PreorderOpen,
		database.FormatTime(expiry), database.FormatTime(time.Now().UTC()),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

const preorderColumns = `preorder_id, book_id, user_id, payment_status, status, expiry_time, created_at`

func scanPreorder(scan func(dest ...any) error) (*model.Preorder, error) {
	p := &model.Preorder{}
	var expiry, createdAt string
	if err := scan(&p.ID, &p.BookID, &p.UserID, &p.PaymentStatus, &p.Status, &expiry, &createdAt); err != nil {
		return nil, err
	}
	t, err := database.ParseTime(expiry)
	if err != nil {
		return nil, err
	}
	p.ExpiryTime = t
	ct, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = ct
	return p, nil
}

func (r *repo) OpenByBook(ctx context.Context, tx *sql.Tx, bookID string) (*model.Preorder, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+preorderColumns+`
		FROM preorders
		WHERE book_id = ? AND status = ?`,
		bookID, model.PreorderOpen,
	)
	p, err := scanPreorder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repo) markStatus(ctx context.Context, tx *sql.Tx, id string, to model.PreorderStatus) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE preorders SET status = ? WHERE preorder_id = ? AND status = ?`,
		to, id, model.PreorderOpen,
	)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) MarkFulfilled(ctx context.Context, tx *sql.Tx, id string) error {
	return r.markStatus(ctx, tx, id, model.PreorderFulfilled)
}

func (r *repo) MarkLapsed(ctx context.Context, tx *sql.Tx, id string) error {
	return r.markStatus(ctx, tx, id, model.PreorderLapsed)
}

func (r *repo) ExpiredOpen(ctx context.Context, now time.Time) ([]model.Preorder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+preorderColumns+`
		FROM preorders
		WHERE status = ? AND expiry_time < ?
		ORDER BY expiry_time ASC`,
		model.PreorderOpen, database.FormatTime(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Preorder
	for rows.Next() {
		p, err := scanPreorder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
