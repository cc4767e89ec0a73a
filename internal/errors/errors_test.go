package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	t.Parallel()

	err := Newf("client name is required").
		Component("clientconfig").
		Category(CategoryValidation).
		Context("operation", "create").
		Build()

	assert.Equal(t, "client name is required", err.Error())
	assert.Equal(t, CategoryValidation, err.Category())
	assert.Equal(t, "clientconfig", err.Component())
	assert.Equal(t, map[string]any{"operation": "create"}, err.Context())
}

func TestCategorySentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		matches error
		misses  []error
	}{
		{"validation", Validation("c", "bad %s", "input"), ErrValidation, []error{ErrNotFound, ErrStore}},
		{"not found", NotFound("c", "client %d not found", 3), ErrNotFound, []error{ErrValidation, ErrStore}},
		{"store", Store("c", fmt.Errorf("connection refused")), ErrStore, []error{ErrValidation, ErrNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, Is(wrapped, tt.matches))
			for _, m := range tt.misses {
				assert.False(t, Is(wrapped, m))
			}
		})
	}
}

func TestEnhancedError_UnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("duplicate entry")
	err := Store("repository", cause)
	assert.True(t, Is(err, cause))
	assert.Equal(t, "duplicate entry", err.Error())
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryGeneric, CategoryOf(fmt.Errorf("plain")))
	assert.Equal(t, CategoryNotFound, CategoryOf(fmt.Errorf("wrap: %w", NotFound("c", "missing"))))
}

func TestMessages(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Messages(nil))
	joined := Join(fmt.Errorf("first"), Join(fmt.Errorf("second"), fmt.Errorf("third")))
	require.Len(t, Messages(joined), 3)
	assert.Equal(t, []string{"first", "second", "third"}, Messages(joined))
}
