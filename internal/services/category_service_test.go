package services

import (
	"github.com/isdelr/taskmaster-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *ServiceTestSuite) TestCreateCategory() {
	alice := s.createUser("alice")

	c, err := s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "Errands"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.DefaultCategoryColor, c.Color)

	_, err = s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "Bad", Color: "red"})
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: " "})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceTestSuite) TestUpdateCategory() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	c, err := s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "Errands", Color: "#111111"})
	require.NoError(s.T(), err)

	updated, err := s.categories.UpdateCategory(s.ctx, alice.ID, c.ID, models.CategoryUpdate{Color: models.Some("#ABCDEF")})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Errands", updated.Name)
	assert.Equal(s.T(), "#ABCDEF", updated.Color)

	_, err = s.categories.UpdateCategory(s.ctx, alice.ID, c.ID, models.CategoryUpdate{Name: models.Null[string]()})
	assert.ErrorIs(s.T(), err, ErrValidation)

	_, err = s.categories.UpdateCategory(s.ctx, bob.ID, c.ID, models.CategoryUpdate{Name: models.Some("stolen")})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *ServiceTestSuite) TestInitDefaultCategories_Idempotent() {
	alice := s.createUser("alice")
	_, err := s.categories.CreateCategory(s.ctx, alice.ID, models.NewCategory{Name: "仕事", Color: "#000000"})
	require.NoError(s.T(), err)

	first, err := s.categories.InitDefaultCategories(s.ctx, alice.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), first, 3)
	assert.Equal(s.T(), "#000000", first[0].Color, "existing category is kept as is")

	second, err := s.categories.InitDefaultCategories(s.ctx, alice.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first, second)

	bob := s.createUser("bob")
	bobs, err := s.categories.InitDefaultCategories(s.ctx, bob.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), bobs, 3)
}
