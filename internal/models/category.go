package models

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6366f1"

// Category groups tasks and locations for one user.
type Category struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// NewCategory is the payload used to create a category.
type NewCategory struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// CategoryUpdate is a partial update of a category.
type CategoryUpdate struct {
	Name  Optional[string] `json:"name"`
	Color Optional[string] `json:"color"`
}
