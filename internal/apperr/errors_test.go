package apperr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/allisson/enclaved/internal/apperr"
)

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, apperr.Wrap(nil, "context"))
	})

	t.Run("wraps and preserves chain", func(t *testing.T) {
		err := apperr.Wrap(apperr.ErrBadRequest, "missing header")
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
		assert.Contains(t, err.Error(), "missing header")
	})
}

func TestIsAs(t *testing.T) {
	wrapped := apperr.Wrap(apperr.ErrUnavailable, "dek not ready")
	assert.True(t, apperr.Is(wrapped, apperr.ErrUnavailable))

	var target *customErr
	assert.False(t, apperr.As(wrapped, &target))
}

type customErr struct{ msg string }

func (e *customErr) Error() string { return e.msg }
