// model/preorder.go
package model

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
)

type PreorderStatus string

const (
	PreorderOpen      PreorderStatus = "Open"
	PreorderFulfilled PreorderStatus = "Fulfilled"
	PreorderLapsed    PreorderStatus = "Lapsed"
)

type Preorder struct {
	ID            string         `json:"preorder_id"`
	BookID        string         `json:"book_id"`
	UserID        string         `json:"user_id"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	Status        PreorderStatus `json:"status"`
	ExpiryTime    time.Time      `json:"expiry_time"`
	CreatedAt     time.Time      `json:"created_at"`
}
