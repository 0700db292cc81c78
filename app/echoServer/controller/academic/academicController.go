package academic

import (
	"log/slog"
	"net/http"
	"strconv"

	academicsvc "libms/service/academic"
	booksvc "libms/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc   academicsvc.Service
	Books booksvc.Service
	V     *validator.Validate
	Log   *slog.Logger
}

// GET /api/academic/streams
func (h *Controller) Streams(c echo.Context) error {
	rows, err := h.Svc.Streams(c.Request().Context())
	if err != nil {
		h.Log.Error("streams", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"streams": rows})
}

// POST /api/academic/streams  (admin)
func (h *Controller) AddStream(c echo.Context) error {
	var req AddStreamReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "stream name is required"})
	}

	id, err := h.Svc.AddStream(c.Request().Context(), req.Name)
	if err != nil {
		switch academicsvc.Code(err) {
		case academicsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "stream already exists"})
		case academicsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("add stream", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "stream added successfully", "stream_id": id})
}

// GET /api/academic/courses
func (h *Controller) Courses(c echo.Context) error {
	rows, err := h.Svc.Courses(c.Request().Context(), c.QueryParam("stream_id"))
	if err != nil {
		h.Log.Error("courses", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"courses": rows})
}

// POST /api/academic/courses  (admin)
func (h *Controller) AddCourse(c echo.Context) error {
	var req AddCourseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing required fields"})
	}

	id, err := h.Svc.AddCourse(c.Request().Context(), req.Name, req.StreamID, req.Semesters)
	if err != nil {
		switch academicsvc.Code(err) {
		case academicsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "course already exists in this stream"})
		case academicsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("add course", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "course added successfully", "course_id": id})
}

// GET /api/academic/subjects
func (h *Controller) Subjects(c echo.Context) error {
	semester := 0
	if v := c.QueryParam("semester"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid semester"})
		}
		semester = n
	}

	rows, err := h.Svc.Subjects(c.Request().Context(), c.QueryParam("course_id"), semester)
	if err != nil {
		h.Log.Error("subjects", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"subjects": rows})
}

// POST /api/academic/subjects  (admin)
func (h *Controller) AddSubject(c echo.Context) error {
	var req AddSubjectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing required fields"})
	}

	id, err := h.Svc.AddSubject(c.Request().Context(), req.Name, req.CourseID, req.Semester)
	if err != nil {
		switch academicsvc.Code(err) {
		case academicsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "subject already exists in this course and semester"})
		case academicsvc.ErrCourseNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "course not found"})
		case academicsvc.ErrBadSemester:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid semester number for this course"})
		case academicsvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("add subject", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "subject added successfully", "subject_id": id})
}

// GET /api/academic/hierarchy
func (h *Controller) Hierarchy(c echo.Context) error {
	tree, err := h.Svc.Hierarchy(c.Request().Context())
	if err != nil {
		h.Log.Error("hierarchy", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"academic_hierarchy": tree})
}

// GET /api/academic/subjects/:id/books
func (h *Controller) SubjectBooks(c echo.Context) error {
	rows, err := h.Books.BySubject(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.Log.Error("subject books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"books": rows})
}
