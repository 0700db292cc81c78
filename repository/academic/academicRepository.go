package academicrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"libms/model"
	"libms/util/database"
)

type Repo interface {
	Streams(ctx context.Context) ([]model.Stream, error)
	StreamByName(ctx context.Context, name string) (*model.Stream, error)
	CreateStream(ctx context.Context, name string) (string, error)

	Courses(ctx context.Context, streamID string) ([]model.Course, error)
	CourseByID(ctx context.Context, id string) (*model.Course, error)
	CourseByNameInStream(ctx context.Context, name, streamID string) (*model.Course, error)
	CreateCourse(ctx context.Context, name, streamID string, semesters int) (string, error)

	Subjects(ctx context.Context, courseID string, semester int) ([]model.Subject, error)
	SubjectExists(ctx context.Context, name, courseID string, semester int) (bool, error)
	CreateSubject(ctx context.Context, name, courseID string, semester int) (string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func now() string { return database.FormatTime(time.Now().UTC()) }

func (r *repo) Streams(ctx context.Context) ([]model.Stream, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT stream_id, name, created_at FROM streams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Stream
	for rows.Next() {
		var s model.Stream
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &createdAt); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) StreamByName(ctx context.Context, name string) (*model.Stream, error) {
	var s model.Stream
	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT stream_id, name, created_at FROM streams WHERE name = ?`, name,
	).Scan(&s.ID, &s.Name, &createdAt)
	if err != nil {
		return nil, err
	}
	if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repo) CreateStream(ctx context.Context, name string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO streams (stream_id, name, created_at) VALUES (?,?,?)`,
		id, name, now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) Courses(ctx context.Context, streamID string) ([]model.Course, error) {
	q := `
		SELECT c.course_id, c.name, c.stream_id, c.semesters, c.created_at, s.name AS stream_name
		FROM courses c
		JOIN streams s ON c.stream_id = s.stream_id`
	var params []any
	if streamID != "" {
		q += ` WHERE c.stream_id = ?`
		params = append(params, streamID)
	}
	q += ` ORDER BY s.name, c.name`

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Course
	for rows.Next() {
		var c model.Course
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.StreamID, &c.Semesters, &createdAt, &c.StreamName); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) CourseByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT course_id, name, stream_id, semesters, created_at
		FROM courses WHERE course_id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.StreamID, &c.Semesters, &createdAt)
	if err != nil {
		return nil, err
	}
	if c.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) CourseByNameInStream(ctx context.Context, name, streamID string) (*model.Course, error) {
	var c model.Course
	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT course_id, name, stream_id, semesters, created_at
		FROM courses WHERE name = ? AND stream_id = ?`, name, streamID,
	).Scan(&c.ID, &c.Name, &c.StreamID, &c.Semesters, &createdAt)
	if err != nil {
		return nil, err
	}
	if c.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) CreateCourse(ctx context.Context, name, streamID string, semesters int) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (course_id, name, stream_id, semesters, created_at)
		VALUES (?,?,?,?,?)`,
		id, name, streamID, semesters, now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *repo) Subjects(ctx context.Context, courseID string, semester int) ([]model.Subject, error) {
	q := `
		SELECT s.subject_id, s.name, s.course_id, s.semester, s.created_at,
		       c.name AS course_name, st.name AS stream_name
		FROM subjects s
		JOIN courses c ON s.course_id = c.course_id
		JOIN streams st ON c.stream_id = st.stream_id
		WHERE 1=1`
	var params []any
	if courseID != "" {
		q += ` AND s.course_id = ?`
		params = append(params, courseID)
	}
	if semester > 0 {
		q += ` AND s.semester = ?`
		params = append(params, semester)
	}
	q += ` ORDER BY st.name, c.name, s.semester, s.name`

	rows, err := r.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Subject
	for rows.Next() {
		var s model.Subject
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.CourseID, &s.Semester, &createdAt, &s.CourseName, &s.StreamName); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repo) SubjectExists(ctx context.Context, name, courseID string, semester int) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM subjects WHERE name = ? AND course_id = ? AND semester = ?`,
		name, courseID, semester,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) CreateSubject(ctx context.Context, name, courseID string, semester int) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (subject_id, name, course_id, semester, created_at)
		VALUES (?,?,?,?,?)`,
		id, name, courseID, semester, now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}
