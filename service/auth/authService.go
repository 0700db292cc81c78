package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"libms/config"
	"libms/model"
	userrepo "libms/repository/user"
	"libms/util/database"
	"libms/util/hash"
	jwtutil "libms/util/jwt"
)

// errors used by controllers

type ErrCode string

const (
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrUserNotFound ErrCode = "USER_NOT_FOUND"
	ErrWrongCurrent ErrCode = "WRONG_CURRENT_PASSWORD"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileReq) error
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         req.Name,
		Email:        email,
		Role:         req.Role,
		StreamID:     &req.StreamID,
		CourseID:     &req.CourseID,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmailAndRole(ctx, email, req.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", makeErr(ErrInvalidCreds)
		}
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, config.TokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.ur.ProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileReq) error {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrUserNotFound)
		}
		return err
	}

	if req.Name != "" || req.Email != "" {
		name := req.Name
		if name == "" {
			name = u.Name
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			email = u.Email
		}
		if err := s.ur.UpdateNameEmail(ctx, userID, name, email); err != nil {
			if database.IsUniqueViolation(err) {
				return makeErr(ErrEmailTaken)
			}
			return err
		}
	}

	if req.CurrentPassword != "" && req.NewPassword != "" {
		if !hash.Check(u.PasswordHash, req.CurrentPassword) {
			return makeErr(ErrWrongCurrent)
		}
		hashed, err := hash.HashPassword(req.NewPassword)
		if err != nil {
			return err
		}
		if err := s.ur.UpdatePassword(ctx, userID, hashed); err != nil {
			return err
		}
	}
	return nil
}
