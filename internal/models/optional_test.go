package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_DistinguishesAbsentNullAndValue(t *testing.T) {
	var upd TaskUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Buy milk","category_id":null}`), &upd))

	assert.True(t, upd.Title.HasValue())
	assert.Equal(t, "Buy milk", upd.Title.Value)

	assert.True(t, upd.CategoryID.Set)
	assert.True(t, upd.CategoryID.Null)
	assert.Nil(t, upd.CategoryID.Ptr())

	assert.False(t, upd.Description.Set)
	assert.False(t, upd.IsCompleted.Set)
	assert.False(t, upd.Deadline.Set)
}

func TestOptional_FalseAndZeroAreValues(t *testing.T) {
	var upd TaskUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"is_completed":false,"priority":0}`), &upd))

	assert.True(t, upd.IsCompleted.HasValue())
	assert.False(t, upd.IsCompleted.Value)
	assert.True(t, upd.Priority.HasValue())
	assert.Equal(t, 0, upd.Priority.Value)
}

func TestOptional_TypeMismatch(t *testing.T) {
	var upd LocationUpdate
	assert.Error(t, json.Unmarshal([]byte(`{"latitude":"north"}`), &upd))
}

func TestOptional_Marshal(t *testing.T) {
	out, err := json.Marshal(CategoryUpdate{Name: Some("Work"), Color: Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Work","color":null}`, string(out))
}

func TestOptional_Ptr(t *testing.T) {
	p := Some(int64(7)).Ptr()
	require.NotNil(t, p)
	assert.Equal(t, int64(7), *p)

	var absent Optional[int64]
	assert.Nil(t, absent.Ptr())
}
