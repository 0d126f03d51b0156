package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindInvalidArgument, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindInvalidState, http.StatusConflict},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.kind, "x").HTTPStatus())
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := New(KindConflict, "time slot already booked")
	wrapped := fmt.Errorf("create booking: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, base))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestUnavailableUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable(cause)

	assert.Equal(t, KindUnavailable, err.Kind)
	assert.ErrorIs(t, err, cause)
}
