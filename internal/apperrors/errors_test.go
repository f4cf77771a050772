package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation": {Validation("bad %s", "input"), http.StatusBadRequest},
		"not found":  {NotFound("ticket %d not found", 4), http.StatusNotFound},
		"conflict":   {Conflict("busy"), http.StatusConflict},
		"forbidden":  {Forbidden("no"), http.StatusForbidden},
		"wrapped":    {fmt.Errorf("create: %w", Unauthorized("expired")), http.StatusUnauthorized},
		"untyped":    {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause, "could not load ticket")

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, TypeInternal))
	assert.False(t, Is(err, TypeConflict))
	assert.Equal(t, "could not load ticket: connection reset", err.Error())
}
