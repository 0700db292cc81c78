package book

import (
	"log/slog"
	"net/http"

	"libms/model"
	booksvc "libms/service/book"
	"libms/service/lifecycle"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc       booksvc.Service
	Lifecycle lifecycle.Service
	V         *validator.Validate
	Log       *slog.Logger
}

// GET /api/books
func (h *Controller) List(c echo.Context) error {
	f := booksvc.SearchFilter{
		SubjectID: c.QueryParam("subject_id"),
		Status:    c.QueryParam("status"),
		Search:    c.QueryParam("search"),
	}
	rows, err := h.Svc.Search(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"books": rows})
}

// GET /api/books/:id
func (h *Controller) Detail(c echo.Context) error {
	row, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("book detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"book": row})
}

// GET /api/books/barcode/:barcode
func (h *Controller) DetailByBarcode(c echo.Context) error {
	row, err := h.Svc.DetailByBarcode(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("book by barcode", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"book": row})
}

// POST /api/books  (admin)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing required fields"})
	}

	id, err := h.Svc.Create(c.Request().Context(), req.Title, req.Author, req.SubjectID, req.Barcode)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBarcodeTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "barcode already exists"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "book added successfully",
		"book_id": id,
	})
}

// PUT /api/books/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}

	err := h.Svc.Update(c.Request().Context(), c.Param("id"), booksvc.UpdateFields{
		Title:     req.Title,
		Author:    req.Author,
		SubjectID: req.SubjectID,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrNothingChanged:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "no valid fields to update"})
		default:
			h.Log.Error("book update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book updated successfully"})
}

// POST /api/books/allot  (admin)
func (h *Controller) Allot(c echo.Context) error {
	var req AllotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing required fields"})
	}

	id, err := h.Lifecycle.Allot(c.Request().Context(), req.BookID, req.UserID)
	if err != nil {
		switch lifecycle.Code(err) {
		case lifecycle.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lifecycle.ErrNotAvailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not available"})
		default:
			h.Log.Error("allot", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "book allotted successfully",
		"allotment_id": id,
	})
}

// POST /api/books/return
func (h *Controller) Return(c echo.Context) error {
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing book_id"})
	}

	if err := h.Lifecycle.Return(c.Request().Context(), req.BookID); err != nil {
		switch lifecycle.Code(err) {
		case lifecycle.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lifecycle.ErrNotIssued:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not issued"})
		default:
			h.Log.Error("return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book returned successfully"})
}

// POST /api/books/preorder
func (h *Controller) Preorder(c echo.Context) error {
	var req PreorderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing required fields"})
	}

	uid, _ := c.Get("user_id").(string)
	out, err := h.Lifecycle.Preorder(c.Request().Context(), req.BookID, uid, model.PaymentStatus(req.PaymentStatus))
	if err != nil {
		switch lifecycle.Code(err) {
		case lifecycle.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lifecycle.ErrNotAvailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not available"})
		default:
			h.Log.Error("preorder", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "book preordered successfully",
		"preorder_id": out.PreorderID,
		"expiry_time": out.ExpiryTime,
	})
}
