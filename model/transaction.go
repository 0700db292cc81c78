// model/transaction.go
package model

import "time"

// TransactionStatus is the stored status. "Overdue" is never stored; it is
// derived at query time from the issue date of a still-Issued transaction.
type TransactionStatus string

const (
	TxIssued   TransactionStatus = "Issued"
	TxReturned TransactionStatus = "Returned"
	TxOverdue  TransactionStatus = "Overdue" // derived view only
)

type Transaction struct {
	AllotmentID string            `json:"allotment_id"`
	BookID      string            `json:"book_id"`
	UserID      string            `json:"user_id"`
	Status      TransactionStatus `json:"status"`
	IssueDate   time.Time         `json:"issue_date"`
	ReturnDate  *time.Time        `json:"return_date,omitempty"`
}

// TransactionDetail is a ledger row joined with book and user columns.
type TransactionDetail struct {
	Transaction
	BookTitle   string `json:"book_title"`
	BookBarcode string `json:"book_barcode"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}

// OverdueRow carries the derived days-overdue count.
type OverdueRow struct {
	TransactionDetail
	DaysOverdue int `json:"days_overdue"`
}

type UserVolume struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Count int64  `json:"transaction_count"`
}

type BookVolume struct {
	Title string `json:"title"`
	Count int64  `json:"borrow_count"`
}

type TransactionStats struct {
	TotalIssued   int64        `json:"total_issued"`
	TotalReturned int64        `json:"total_returned"`
	TotalOverdue  int64        `json:"total_overdue"`
	ActiveUsers   []UserVolume `json:"active_users"`
	PopularBooks  []BookVolume `json:"popular_books"`
}
