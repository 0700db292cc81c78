package lifecycle

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"libms/model"
	bookrepo "libms/repository/book"
	preorderrepo "libms/repository/preorder"
	txrepo "libms/repository/transaction"
	"libms/util/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T) (Service, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	return New(db, bookrepo.New(db), txrepo.New(db), preorderrepo.New(db)), db
}

func seedUser(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, name, role, email, password, created_at)
		VALUES (?,?,?,?,?,?)`,
		id, name, "student", name+"@example.com", "x",
		database.FormatTime(time.Now().UTC()),
	)
	require.NoError(t, err)
	return id
}

func seedBook(t *testing.T, db *sql.DB, barcode string) string {
	t.Helper()
	b := &model.Book{Title: "Operating System Concepts", Author: "Silberschatz", Barcode: barcode}
	require.NoError(t, bookrepo.New(db).Create(context.Background(), b))
	return b.ID
}

func bookStatus(t *testing.T, db *sql.DB, bookID string) model.BookStatus {
	t.Helper()
	var st model.BookStatus
	require.NoError(t, db.QueryRow(`SELECT status FROM books WHERE book_id = ?`, bookID).Scan(&st))
	return st
}

func openTxCount(t *testing.T, db *sql.DB, bookID string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`
		SELECT COUNT(*) FROM transactions WHERE book_id = ? AND status = 'Issued'`, bookID).Scan(&n))
	return n
}

func preorderStatus(t *testing.T, db *sql.DB, preorderID string) model.PreorderStatus {
	t.Helper()
	var st model.PreorderStatus
	require.NoError(t, db.QueryRow(`
		SELECT status FROM preorders WHERE preorder_id = ?`, preorderID).Scan(&st))
	return st
}

func TestAllotReturnCycle(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	u1 := seedUser(t, db, "ravi")
	u2 := seedUser(t, db, "meera")
	bookID := seedBook(t, db, "X1")

	allotmentID, err := svc.Allot(ctx, bookID, u1)
	require.NoError(t, err)
	require.NotEmpty(t, allotmentID)
	require.Equal(t, model.BookIssued, bookStatus(t, db, bookID))
	require.Equal(t, 1, openTxCount(t, db, bookID))

	_, err = svc.Allot(ctx, bookID, u2)
	require.Error(t, err)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.Equal(t, 1, openTxCount(t, db, bookID), "failed allot must not leave an orphaned transaction")

	require.NoError(t, svc.Return(ctx, bookID))
	require.Equal(t, model.BookAvailable, bookStatus(t, db, bookID))
	require.Equal(t, 0, openTxCount(t, db, bookID))

	var issue, returned string
	require.NoError(t, db.QueryRow(`
		SELECT issue_date, return_date FROM transactions WHERE allotment_id = ?`,
		allotmentID).Scan(&issue, &returned))
	it, err := database.ParseTime(issue)
	require.NoError(t, err)
	rt, err := database.ParseTime(returned)
	require.NoError(t, err)
	require.False(t, rt.Before(it))

	err = svc.Return(ctx, bookID)
	require.Equal(t, ErrNotIssued, Code(err))
}

func TestAllotUnknownBook(t *testing.T) {
	svc, db := newTestService(t)
	u := seedUser(t, db, "ravi")

	_, err := svc.Allot(context.Background(), uuid.NewString(), u)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestReturnUnknownBook(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Return(context.Background(), uuid.NewString())
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestPreorderThenPickup(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	holder := seedUser(t, db, "ravi")
	other := seedUser(t, db, "meera")
	bookID := seedBook(t, db, "X2")

	out, err := svc.Preorder(ctx, bookID, holder, model.PaymentPending)
	require.NoError(t, err)
	require.True(t, out.ExpiryTime.After(time.Now().UTC()))
	require.Equal(t, model.BookPreordered, bookStatus(t, db, bookID))

	// a second reservation and a foreign pickup are both refused
	_, err = svc.Preorder(ctx, bookID, other, model.PaymentPending)
	require.Equal(t, ErrNotAvailable, Code(err))
	_, err = svc.Allot(ctx, bookID, other)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.Equal(t, 0, openTxCount(t, db, bookID))

	// the holder picks the book up
	allotmentID, err := svc.Allot(ctx, bookID, holder)
	require.NoError(t, err)
	require.NotEmpty(t, allotmentID)
	require.Equal(t, model.BookIssued, bookStatus(t, db, bookID))
	require.Equal(t, model.PreorderFulfilled, preorderStatus(t, db, out.PreorderID))
}

func TestPreorderNotAvailable(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	u := seedUser(t, db, "ravi")
	bookID := seedBook(t, db, "X3")

	_, err := svc.Allot(ctx, bookID, u)
	require.NoError(t, err)

	_, err = svc.Preorder(ctx, bookID, u, model.PaymentCompleted)
	require.Equal(t, ErrNotAvailable, Code(err))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM preorders`).Scan(&n))
	require.Zero(t, n, "failed preorder must not leave a row behind")
}

func backdateExpiry(t *testing.T, db *sql.DB, preorderID string, to time.Time) {
	t.Helper()
	_, err := db.Exec(`UPDATE preorders SET expiry_time = ? WHERE preorder_id = ?`,
		database.FormatTime(to), preorderID)
	require.NoError(t, err)
}

func TestResolveExpired(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	u := seedUser(t, db, "ravi")
	bookID := seedBook(t, db, "X4")

	out, err := svc.Preorder(ctx, bookID, u, model.PaymentPending)
	require.NoError(t, err)
	backdateExpiry(t, db, out.PreorderID, time.Now().UTC().Add(-time.Hour))

	reverted, err := svc.ResolveExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, []string{bookID}, reverted)
	require.Equal(t, model.BookAvailable, bookStatus(t, db, bookID))
	require.Equal(t, model.PreorderLapsed, preorderStatus(t, db, out.PreorderID))

	// second sweep finds nothing
	reverted, err = svc.ResolveExpired(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Empty(t, reverted)
}

func TestAllotLapsesExpiredPreorder(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	holder := seedUser(t, db, "ravi")
	other := seedUser(t, db, "meera")
	bookID := seedBook(t, db, "X5")

	out, err := svc.Preorder(ctx, bookID, holder, model.PaymentPending)
	require.NoError(t, err)
	backdateExpiry(t, db, out.PreorderID, time.Now().UTC().Add(-time.Minute))

	// no sweep has run, but the expired hold no longer blocks anyone
	allotmentID, err := svc.Allot(ctx, bookID, other)
	require.NoError(t, err)
	require.NotEmpty(t, allotmentID)
	require.Equal(t, model.BookIssued, bookStatus(t, db, bookID))
	require.Equal(t, model.PreorderLapsed, preorderStatus(t, db, out.PreorderID))
}

func TestPreorderReplacesExpiredPreorder(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	holder := seedUser(t, db, "ravi")
	other := seedUser(t, db, "meera")
	bookID := seedBook(t, db, "X6")

	out, err := svc.Preorder(ctx, bookID, holder, model.PaymentPending)
	require.NoError(t, err)
	backdateExpiry(t, db, out.PreorderID, time.Now().UTC().Add(-time.Minute))

	out2, err := svc.Preorder(ctx, bookID, other, model.PaymentCompleted)
	require.NoError(t, err)
	require.Equal(t, model.PreorderLapsed, preorderStatus(t, db, out.PreorderID))
	require.Equal(t, model.PreorderOpen, preorderStatus(t, db, out2.PreorderID))
	require.Equal(t, model.BookPreordered, bookStatus(t, db, bookID))
}
