package transaction

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	txsvc "libms/service/transaction"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc txsvc.Service
	Log *slog.Logger
}

func filterFromQuery(c echo.Context) (txsvc.Filter, error) {
	f := txsvc.Filter{
		UserID: c.QueryParam("user_id"),
		BookID: c.QueryParam("book_id"),
		Status: c.QueryParam("status"),
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		// inclusive through the end of the day
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &t
	}
	return f, nil
}

// GET /api/transactions
func (h *Controller) List(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date filter"})
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("transaction list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": rows})
}

// GET /api/transactions/user/:id  (self or admin)
func (h *Controller) ByUser(c echo.Context) error {
	target := c.Param("id")
	uid, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if role != "admin" && uid != target {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	rows, err := h.Svc.List(c.Request().Context(), txsvc.Filter{UserID: target})
	if err != nil {
		h.Log.Error("user transactions", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": rows})
}

// GET /api/transactions/stats  (admin)
func (h *Controller) Stats(c echo.Context) error {
	st, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		h.Log.Error("transaction stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, st)
}

// GET /api/transactions/overdue  (admin)
func (h *Controller) Overdue(c echo.Context) error {
	rows, err := h.Svc.Overdue(c.Request().Context(), time.Now().UTC())
	if err != nil {
		h.Log.Error("overdue list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"overdue_books": rows})
}

// GET /api/transactions/export  (admin)
func (h *Controller) Export(c echo.Context) error {
	f, err := filterFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date filter"})
	}

	var buf bytes.Buffer
	if err := h.Svc.ExportCSV(c.Request().Context(), &buf, f); err != nil {
		h.Log.Error("transaction export", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	name := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
