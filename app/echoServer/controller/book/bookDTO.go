package book

type CreateBookReq struct {
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author" validate:"required"`
	SubjectID string `json:"subject_id"`
	Barcode   string `json:"barcode" validate:"required"`
}

type UpdateBookReq struct {
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	SubjectID *string `json:"subject_id"`
}

type AllotReq struct {
	BookID string `json:"book_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

type ReturnReq struct {
	BookID string `json:"book_id" validate:"required"`
}

type PreorderReq struct {
	BookID        string `json:"book_id" validate:"required"`
	PaymentStatus string `json:"payment_status" validate:"required,oneof=Pending Completed"`
}
