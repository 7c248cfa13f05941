package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/isdelr/taskmaster-be/internal/auth"
	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = "id, username, password_hash, display_name, avatar_url, created_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName, &user.AvatarURL, &user.CreatedAt)
	return user, err
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by exact, case-sensitive username,
// including the password hash.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("username and password are required: %w", ErrValidation)
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", username, hashed)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, fmt.Errorf("username %q: %w", username, ErrAlreadyExists)
		}
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(ctx, id)
}

// Profile field bounds.
const (
	MaxDisplayNameLength = 100  // characters
	MaxAvatarURLLength   = 2048 // bytes
)

// UpdateUser applies the profile fields present in upd. An explicit null
// clears the field.
func (s *UserService) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) (models.User, error) {
	if utf8.RuneCountInString(upd.DisplayName.Value) > MaxDisplayNameLength {
		return models.User{}, fmt.Errorf("display_name must be at most %d characters: %w", MaxDisplayNameLength, ErrValidation)
	}
	if len(upd.AvatarURL.Value) > MaxAvatarURLLength {
		return models.User{}, fmt.Errorf("avatar_url must be at most %d bytes: %w", MaxAvatarURLLength, ErrValidation)
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if upd.DisplayName.Set {
		user.DisplayName = upd.DisplayName.Ptr()
	}
	if upd.AvatarURL.Set {
		user.AvatarURL = upd.AvatarURL.Ptr()
	}

	_, err = s.db.ExecContext(ctx, "UPDATE users SET display_name = ?, avatar_url = ? WHERE id = ?",
		user.DisplayName, user.AvatarURL, id)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// DeleteUser removes a user and, through cascading keys, everything they own.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(res, "user", id)
}

// expectRow turns a zero-row write into ErrNotFound.
func expectRow(res sql.Result, kind string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", kind, id, ErrNotFound)
	}
	return nil
}
