// Package lifecycle coordinates the book state machine. Every operation runs
// as a single database transaction: the status transition and the matching
// ledger or preorder row commit together or not at all.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"libms/config"
	"libms/model"
	bookrepo "libms/repository/book"
	preorderrepo "libms/repository/preorder"
	txrepo "libms/repository/transaction"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrNotAvailable ErrCode = "NOT_AVAILABLE"
	ErrNotIssued    ErrCode = "NOT_ISSUED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type Preordered struct {
	PreorderID string
	ExpiryTime time.Time
}

type Service interface {
	// Allot issues an Available book to a user. A Preordered book is issued
	// only to the holder of an unexpired reservation (pickup); an expired
	// reservation lapses first and the book is treated as Available.
	Allot(ctx context.Context, bookID, userID string) (allotmentID string, err error)

	// Return closes the open transaction and puts the book back in
	// circulation.
	Return(ctx context.Context, bookID string) error

	// Preorder reserves an Available book until the hold window passes.
	// Payment is recorded as a flag only; no settlement happens here.
	Preorder(ctx context.Context, bookID, userID string, payment model.PaymentStatus) (*Preordered, error)

	// ResolveExpired lapses reservations whose expiry has passed and reverts
	// their books to Available. Returns the reverted book ids.
	ResolveExpired(ctx context.Context, now time.Time) ([]string, error)
}

type service struct {
	db *sql.DB
	br bookrepo.Repo
	tr txrepo.Repo
	pr preorderrepo.Repo
}

func New(db *sql.DB, br bookrepo.Repo, tr txrepo.Repo, pr preorderrepo.Repo) Service {
	return &service{db: db, br: br, tr: tr, pr: pr}
}

func (s *service) Allot(ctx context.Context, bookID, userID string) (_ string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	st, err := s.br.StatusForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", makeErr(ErrBookNotFound)
		}
		return "", err
	}

	switch st {
	case model.BookAvailable:
		// proceed
	case model.BookPreordered:
		if err = s.settlePreorder(ctx, tx, bookID, userID); err != nil {
			return "", err
		}
	default:
		return "", makeErr(ErrNotAvailable)
	}

	id, err := s.tr.Open(ctx, tx, bookID, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, txrepo.ErrOpenExists) {
			return "", makeErr(ErrNotAvailable)
		}
		return "", err
	}

	if err = s.br.SetStatus(ctx, tx, bookID, st, model.BookIssued); err != nil {
		if errors.Is(err, bookrepo.ErrStatusConflict) {
			return "", makeErr(ErrNotAvailable)
		}
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// settlePreorder decides what a Preordered book means for the caller: a
// pickup when the open reservation is theirs and still valid, a lapse when it
// has expired, and a refusal otherwise. A Preordered book with no open
// reservation is stale state and treated as available.
func (s *service) settlePreorder(ctx context.Context, tx *sql.Tx, bookID, userID string) error {
	po, err := s.pr.OpenByBook(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if po == nil {
		return nil
	}
	if !po.ExpiryTime.After(time.Now().UTC()) {
		return s.pr.MarkLapsed(ctx, tx, po.ID)
	}
	if po.UserID == userID {
		return s.pr.MarkFulfilled(ctx, tx, po.ID)
	}
	return makeErr(ErrNotAvailable)
}

func (s *service) Return(ctx context.Context, bookID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	st, err := s.br.StatusForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		return err
	}
	if st != model.BookIssued {
		return makeErr(ErrNotIssued)
	}

	if err = s.tr.Close(ctx, tx, bookID, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotIssued)
		}
		return err
	}

	if err = s.br.SetStatus(ctx, tx, bookID, model.BookIssued, model.BookAvailable); err != nil {
		if errors.Is(err, bookrepo.ErrStatusConflict) {
			return makeErr(ErrNotIssued)
		}
		return err
	}

	return tx.Commit()
}

func (s *service) Preorder(ctx context.Context, bookID, userID string, payment model.PaymentStatus) (_ *Preordered, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	st, err := s.br.StatusForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	switch st {
	case model.BookAvailable:
		// proceed
	case model.BookPreordered:
		// Only an expired reservation clears the way for a new one.
		po, perr := s.pr.OpenByBook(ctx, tx, bookID)
		if perr != nil {
			return nil, perr
		}
		if po != nil {
			if po.ExpiryTime.After(time.Now().UTC()) {
				return nil, makeErr(ErrNotAvailable)
			}
			if err = s.pr.MarkLapsed(ctx, tx, po.ID); err != nil {
				return nil, err
			}
		}
	default:
		return nil, makeErr(ErrNotAvailable)
	}

	expiry := time.Now().UTC().Add(config.PreorderHold)
	id, err := s.pr.Reserve(ctx, tx, bookID, userID, payment, expiry)
	if err != nil {
		return nil, err
	}

	if st == model.BookAvailable {
		if err = s.br.SetStatus(ctx, tx, bookID, model.BookAvailable, model.BookPreordered); err != nil {
			if errors.Is(err, bookrepo.ErrStatusConflict) {
				return nil, makeErr(ErrNotAvailable)
			}
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Preordered{PreorderID: id, ExpiryTime: expiry}, nil
}

func (s *service) ResolveExpired(ctx context.Context, now time.Time) ([]string, error) {
	expired, err := s.pr.ExpiredOpen(ctx, now)
	if err != nil {
		return nil, err
	}

	var reverted []string
	for _, po := range expired {
		ok, err := s.lapseOne(ctx, po)
		if err != nil {
			return reverted, err
		}
		if ok {
			reverted = append(reverted, po.BookID)
		}
	}
	return reverted, nil
}

// lapseOne settles a single expired reservation. It reports whether the book
// actually reverted to Available.
func (s *service) lapseOne(ctx context.Context, po model.Preorder) (ok bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.pr.MarkLapsed(ctx, tx, po.ID); err != nil {
		// Already settled by a concurrent path; nothing to revert.
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return false, tx.Rollback()
		}
		return false, err
	}
	if err = s.br.SetStatus(ctx, tx, po.BookID, model.BookPreordered, model.BookAvailable); err != nil {
		// The book moved on; the lapse still stands, the status stays.
		if errors.Is(err, bookrepo.ErrStatusConflict) {
			err = nil
			return false, tx.Commit()
		}
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
