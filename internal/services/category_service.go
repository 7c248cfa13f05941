package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/models"
)

// DefaultCategories are created by InitDefaultCategories.
var DefaultCategories = []models.NewCategory{
	{Name: "家事", Color: "#10B981"},
	{Name: "仕事", Color: "#3B82F6"},
	{Name: "課題", Color: "#F59E0B"},
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	GetAllCategories(ctx context.Context, userID int64) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, userID, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, userID int64, in models.NewCategory) (models.Category, error)
	UpdateCategory(ctx context.Context, userID, id int64, upd models.CategoryUpdate) (models.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error
	InitDefaultCategories(ctx context.Context, userID int64) ([]models.Category, error)
}

// CategoryService provides business logic for category management.
type CategoryService struct {
	db *sql.DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

func getCategory(ctx context.Context, q database.DBTX, userID, id int64) (models.Category, error) {
	var c models.Category
	err := q.QueryRowContext(ctx, "SELECT id, user_id, name, color FROM categories WHERE id = ? AND user_id = ?", id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return models.Category{}, err
	}
	return c, nil
}

func listCategories(ctx context.Context, q database.DBTX, userID int64) ([]models.Category, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, user_id, name, color FROM categories WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// checkCategoryRef rejects a category reference the user does not own.
func checkCategoryRef(ctx context.Context, q database.DBTX, userID int64, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := getCategory(ctx, q, userID, *id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("category %d does not exist: %w", *id, ErrValidation)
		}
		return err
	}
	return nil
}

func validateCategory(name, color string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("category name is required: %w", ErrValidation)
	}
	if !hexColor.MatchString(color) {
		return fmt.Errorf("color %q is not a hex color: %w", color, ErrValidation)
	}
	return nil
}

// GetAllCategories lists the user's categories in creation order.
func (s *CategoryService) GetAllCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	return listCategories(ctx, s.db, userID)
}

// GetCategoryByID retrieves one of the user's categories.
func (s *CategoryService) GetCategoryByID(ctx context.Context, userID, id int64) (models.Category, error) {
	return getCategory(ctx, s.db, userID, id)
}

// CreateCategory creates a category, applying the default color when none is given.
func (s *CategoryService) CreateCategory(ctx context.Context, userID int64, in models.NewCategory) (models.Category, error) {
	if in.Color == "" {
		in.Color = models.DefaultCategoryColor
	}
	if err := validateCategory(in.Name, in.Color); err != nil {
		return models.Category{}, err
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO categories (user_id, name, color) VALUES (?, ?, ?)", userID, in.Name, in.Color)
	if err != nil {
		return models.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{ID: id, UserID: userID, Name: in.Name, Color: in.Color}, nil
}

// UpdateCategory applies the fields present in upd. Neither field is nullable.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id int64, upd models.CategoryUpdate) (models.Category, error) {
	c, err := getCategory(ctx, s.db, userID, id)
	if err != nil {
		return models.Category{}, err
	}
	if upd.Name.Null || upd.Color.Null {
		return models.Category{}, fmt.Errorf("name and color cannot be null: %w", ErrValidation)
	}
	if upd.Name.Set {
		c.Name = upd.Name.Value
	}
	if upd.Color.Set {
		c.Color = upd.Color.Value
	}
	if err := validateCategory(c.Name, c.Color); err != nil {
		return models.Category{}, err
	}

	if _, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ?, color = ? WHERE id = ? AND user_id = ?", c.Name, c.Color, id, userID); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category. Tasks and locations referencing it keep
// existing with the reference cleared.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return expectRow(res, "category", id)
}

// InitDefaultCategories creates each default category whose name the user
// does not have yet and returns all of the user's categories.
func (s *CategoryService) InitDefaultCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	var categories []models.Category
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		existing, err := listCategories(ctx, tx, userID)
		if err != nil {
			return err
		}
		names := make(map[string]bool, len(existing))
		for _, c := range existing {
			names[c.Name] = true
		}

		for _, def := range DefaultCategories {
			if names[def.Name] {
				continue
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO categories (user_id, name, color) VALUES (?, ?, ?)", userID, def.Name, def.Color); err != nil {
				return fmt.Errorf("failed to create default category %q: %w", def.Name, err)
			}
		}

		categories, err = listCategories(ctx, tx, userID)
		return err
	})
	return categories, err
}
