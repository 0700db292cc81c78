package txrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"libms/config"
	"libms/model"
	"libms/util/database"
)

// ErrOpenExists means the book already has an open (Issued) transaction.
var ErrOpenExists = errors.New("open transaction exists for book")

type Filter struct {
	UserID    string
	BookID    string
	Status    string
	StartDate *time.Time // inclusive, on issue_date
	EndDate   *time.Time // inclusive, on issue_date
}

type Repo interface {
	// Open inserts a new Issued row for the book inside tx. Exactly one open
	// row may exist per book at any time.
	Open(ctx context.Context, tx *sql.Tx, bookID, userID string, at time.Time) (string, error)
	// Close marks the single open row for the book Returned at the given
	// time. sql.ErrNoRows when nothing is open.
	Close(ctx context.Context, tx *sql.Tx, bookID string, at time.Time) error

	List(ctx context.Context, f Filter) ([]model.TransactionDetail, error)
	Stats(ctx context.Context, now time.Time) (*model.TransactionStats, error)
	// OpenOlderThan lists Issued rows whose issue date is before the cutoff,
	// oldest first. Feeds the overdue view.
	OpenOlderThan(ctx context.Context, cutoff time.Time) ([]model.TransactionDetail, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Open(ctx context.Context, tx *sql.Tx, bookID, userID string, at time.Time) (string, error) {
	var exists int
	err := tx.QueryRowContext(ctx, `
		SELECT 1 FROM transactions WHERE book_id = ? AND status = ?`,
		bookID, model.TxIssued,
	).Scan(&exists)
	if err == nil {
		return "", ErrOpenExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (allotment_id, book_id, user_id, status, issue_date, created_at)
		VALUES (?,?,?,?,?,?)`,
		id, bookID, userID, model.TxIssued,
		database.FormatTime(at), database.FormatTime(at),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) Close(ctx context.Context, tx *sql.Tx, bookID string, at time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, return_date = ?
		WHERE book_id = ? AND status = ?`,
		model.TxReturned, database.FormatTime(at), bookID, model.TxIssued,
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

const detailSelect = `
	SELECT t.allotment_id, t.book_id, t.user_id, t.status, t.issue_date, t.return_date,
	       b.title AS book_title, b.barcode AS book_barcode,
	       u.name AS user_name, u.email AS user_email
	FROM transactions t
	JOIN books b ON t.book_id = b.book_id
	JOIN users u ON t.user_id = u.id`

func scanDetail(rows *sql.Rows) (*model.TransactionDetail, error) {
	d := &model.TransactionDetail{}
	var issueDate string
	var returnDate sql.NullString
	if err := rows.Scan(&d.AllotmentID, &d.BookID, &d.UserID, &d.Status, &issueDate, &returnDate,
		&d.BookTitle, &d.BookBarcode, &d.UserName, &d.UserEmail); err != nil {
		return nil, err
	}
	t, err := database.ParseTime(issueDate)
	if err != nil {
		return nil, err
	}
	d.IssueDate = t
	rt, err := database.ParseNullableTime(returnDate)
	if err != nil {
		return nil, err
	}
	d.ReturnDate = rt
	return d, nil
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.TransactionDetail, error) {
	q := detailSelect + ` WHERE 1=1`
	var params []any
	if f.UserID != "" {
		q += ` AND t.user_id = ?`
		params = append(params, f.UserID)
	}
	if f.BookID != "" {
		q += ` AND t.book_id = ?`
		params = append(params, f.BookID)
	}
	if f.Status != "" {
		q += ` AND t.status = ?`
		params = append(params, f.Status)
	}
	if f.StartDate != nil {
		q += ` AND t.issue_date >= ?`
		params = append(params, database.FormatTime(*f.StartDate))
	}
	if f.EndDate != nil {
		q += ` AND t.issue_date <= ?`
		params = append(params, database.FormatTime(*f.EndDate))
	}
	q += ` ORDER BY t.issue_date DESC`

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TransactionDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *repo) Stats(ctx context.Context, now time.Time) (*model.TransactionStats, error) {
	st := &model.TransactionStats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE status = ?`, model.TxIssued,
	).Scan(&st.TotalIssued)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE status = ?`, model.TxReturned,
	).Scan(&st.TotalReturned)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-time.Duration(config.LoanPeriodDays) * 24 * time.Hour)
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE status = ? AND issue_date < ?`,
		model.TxIssued, database.FormatTime(cutoff),
	).Scan(&st.TotalOverdue)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT u.name, u.email, COUNT(*) AS transaction_count
		FROM transactions t
		JOIN users u ON t.user_id = u.id
		GROUP BY t.user_id
		ORDER BY transaction_count DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var v model.UserVolume
		if err := rows.Scan(&v.Name, &v.Email, &v.Count); err != nil {
			return nil, err
		}
		st.ActiveUsers = append(st.ActiveUsers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows2, err := r.db.QueryContext(ctx, `
		SELECT b.title, COUNT(*) AS borrow_count
		FROM transactions t
		JOIN books b ON t.book_id = b.book_id
		GROUP BY t.book_id
		ORDER BY borrow_count DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows2.Close()
	for rows2.Next() {
		var v model.BookVolume
		if err := rows2.Scan(&v.Title, &v.Count); err != nil {
			return nil, err
		}
		st.PopularBooks = append(st.PopularBooks, v)
	}
	return st, rows2.Err()
}

func (r *repo) OpenOlderThan(ctx context.Context, cutoff time.Time) ([]model.TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, detailSelect+`
		WHERE t.status = ? AND t.issue_date < ?
		ORDER BY t.issue_date ASC`,
		model.TxIssued, database.FormatTime(cutoff),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TransactionDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
