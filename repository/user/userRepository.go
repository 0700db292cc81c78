package userrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"libms/model"
	"libms/util/database"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmailAndRole(ctx context.Context, email, role string) (*model.User, error)
	ByID(ctx context.Context, id string) (*model.User, error)
	// ProfileByID joins stream and course names for the profile view.
	ProfileByID(ctx context.Context, id string) (*model.User, error)
	UpdateNameEmail(ctx context.Context, id, name, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(id, name, role, stream_id, course_id, email, password, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, u.Role, u.StreamID, u.CourseID, u.Email, u.PasswordHash,
		database.FormatTime(u.CreatedAt),
	)
	return err
}

const userColumns = `id, name, role, stream_id, course_id, email, password, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Role, &u.StreamID, &u.CourseID, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return u, nil
}

func (r *repo) ByEmailAndRole(ctx context.Context, email, role string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower(?) AND role = ?`,
		email, role,
	)
	return scanUser(row)
}

func (r *repo) ByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *repo) ProfileByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.role, u.stream_id, u.course_id, u.email, u.password, u.created_at,
		       s.name AS stream_name, c.name AS course_name
		FROM users u
		LEFT JOIN streams s ON u.stream_id = s.stream_id
		LEFT JOIN courses c ON u.course_id = c.course_id
		WHERE u.id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.Role, &u.StreamID, &u.CourseID, &u.Email, &u.PasswordHash, &createdAt,
		&u.StreamName, &u.CourseName)
	if err != nil {
		return nil, err
	}
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return u, nil
}

func (r *repo) UpdateNameEmail(ctx context.Context, id, name, email string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ? WHERE id = ?`,
		name, email, id,
	)
	return err
}

func (r *repo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET password = ? WHERE id = ?`,
		passwordHash, id,
	)
	return err
}
