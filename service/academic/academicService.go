package academicsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"libms/model"
	academicrepo "libms/repository/academic"
)

type ErrCode string

const (
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrDuplicate      ErrCode = "DUPLICATE"
	ErrCourseNotFound ErrCode = "COURSE_NOT_FOUND"
	ErrBadSemester    ErrCode = "BAD_SEMESTER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Streams(ctx context.Context) ([]model.Stream, error)
	AddStream(ctx context.Context, name string) (string, error)
	Courses(ctx context.Context, streamID string) ([]model.Course, error)
	AddCourse(ctx context.Context, name, streamID string, semesters int) (string, error)
	Subjects(ctx context.Context, courseID string, semester int) ([]model.Subject, error)
	AddSubject(ctx context.Context, name, courseID string, semester int) (string, error)
	Hierarchy(ctx context.Context) ([]model.HierarchyStream, error)
}

type service struct{ r academicrepo.Repo }

func New(r academicrepo.Repo) Service { return &service{r: r} }

func (s *service) Streams(ctx context.Context) ([]model.Stream, error) {
	return s.r.Streams(ctx)
}

func (s *service) AddStream(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", makeErr(ErrBadInput)
	}
	if existing, err := s.r.StreamByName(ctx, name); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	} else if existing != nil {
		return "", makeErr(ErrDuplicate)
	}
	return s.r.CreateStream(ctx, name)
}

func (s *service) Courses(ctx context.Context, streamID string) ([]model.Course, error) {
	return s.r.Courses(ctx, streamID)
}

func (s *service) AddCourse(ctx context.Context, name, streamID string, semesters int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || streamID == "" || semesters <= 0 {
		return "", makeErr(ErrBadInput)
	}
	if existing, err := s.r.CourseByNameInStream(ctx, name, streamID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	} else if existing != nil {
		return "", makeErr(ErrDuplicate)
	}
	return s.r.CreateCourse(ctx, name, streamID, semesters)
}

func (s *service) Subjects(ctx context.Context, courseID string, semester int) ([]model.Subject, error) {
	return s.r.Subjects(ctx, courseID, semester)
}

func (s *service) AddSubject(ctx context.Context, name, courseID string, semester int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || courseID == "" || semester <= 0 {
		return "", makeErr(ErrBadInput)
	}

	course, err := s.r.CourseByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", makeErr(ErrCourseNotFound)
		}
		return "", err
	}
	if semester > course.Semesters {
		return "", makeErr(ErrBadSemester)
	}

	exists, err := s.r.SubjectExists(ctx, name, courseID, semester)
	if err != nil {
		return "", err
	}
	if exists {
		return "", makeErr(ErrDuplicate)
	}
	return s.r.CreateSubject(ctx, name, courseID, semester)
}

func (s *service) Hierarchy(ctx context.Context) ([]model.HierarchyStream, error) {
	streams, err := s.r.Streams(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.HierarchyStream, 0, len(streams))
	for _, st := range streams {
		courses, err := s.r.Courses(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		hcs := make([]model.HierarchyCourse, 0, len(courses))
		for _, c := range courses {
			subjects, err := s.r.Subjects(ctx, c.ID, 0)
			if err != nil {
				return nil, err
			}
			bySem := make(map[int][]model.Subject)
			for _, sub := range subjects {
				bySem[sub.Semester] = append(bySem[sub.Semester], sub)
			}
			hcs = append(hcs, model.HierarchyCourse{Course: c, SubjectsBySemester: bySem})
		}
		out = append(out, model.HierarchyStream{Stream: st, Courses: hcs})
	}
	return out, nil
}
