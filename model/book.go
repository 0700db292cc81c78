// model/book.go
package model

import "time"

type BookStatus string

const (
	BookAvailable  BookStatus = "Available"
	BookIssued     BookStatus = "Issued"
	BookPreordered BookStatus = "Preordered"
)

type Book struct {
	ID        string     `json:"book_id"`
	SubjectID *string    `json:"subject_id,omitempty"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Barcode   string     `json:"barcode"`
	Status    BookStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`

	// Joined for list/detail views.
	SubjectName *string `json:"subject_name,omitempty"`
	CourseName  *string `json:"course_name,omitempty"`
}
