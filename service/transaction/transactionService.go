// Package txsvc serves the ledger's read side: history, statistics, the
// derived overdue view and the CSV export.
package txsvc

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"libms/config"
	"libms/model"
	txrepo "libms/repository/transaction"
)

type Filter = txrepo.Filter

type Service interface {
	List(ctx context.Context, f Filter) ([]model.TransactionDetail, error)
	Stats(ctx context.Context) (*model.TransactionStats, error)
	// Overdue lists open transactions past the loan period, oldest first,
	// with the computed days-overdue count.
	Overdue(ctx context.Context, now time.Time) ([]model.OverdueRow, error)
	ExportCSV(ctx context.Context, w io.Writer, f Filter) error
}

type service struct{ r txrepo.Repo }

func New(r txrepo.Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, f Filter) ([]model.TransactionDetail, error) {
	return s.r.List(ctx, f)
}

func (s *service) Stats(ctx context.Context) (*model.TransactionStats, error) {
	return s.r.Stats(ctx, time.Now().UTC())
}

func (s *service) Overdue(ctx context.Context, now time.Time) ([]model.OverdueRow, error) {
	loan := time.Duration(config.LoanPeriodDays) * 24 * time.Hour
	rows, err := s.r.OpenOlderThan(ctx, now.Add(-loan))
	if err != nil {
		return nil, err
	}

	out := make([]model.OverdueRow, 0, len(rows))
	for _, d := range rows {
		days := int(now.Sub(d.IssueDate).Hours()/24) - config.LoanPeriodDays
		if days < 0 {
			days = 0
		}
		d.Status = model.TxOverdue
		out = append(out, model.OverdueRow{TransactionDetail: d, DaysOverdue: days})
	}
	return out, nil
}

func (s *service) ExportCSV(ctx context.Context, w io.Writer, f Filter) error {
	rows, err := s.r.List(ctx, f)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"allotment_id", "book_title", "book_barcode",
		"user_name", "user_email", "status", "issue_date", "return_date",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range rows {
		returned := ""
		if d.ReturnDate != nil {
			returned = d.ReturnDate.Format("2006-01-02 15:04:05")
		}
		rec := []string{
			d.AllotmentID, d.BookTitle, d.BookBarcode,
			d.UserName, d.UserEmail, string(d.Status),
			d.IssueDate.Format("2006-01-02 15:04:05"), returned,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
