package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsAreDistinct(t *testing.T) {
	err := InvalidCorpus("corpus has %d documents", 0)
	assert.ErrorIs(t, err, ErrInvalidCorpus)
	assert.NotErrorIs(t, err, ErrInvalidConfiguration)
	assert.NotErrorIs(t, err, ErrWorkerFailure)
	assert.Equal(t, "invalid corpus: corpus has 0 documents", err.Error())

	err = InvalidConfiguration("k1 = %v", -1.0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.NotErrorIs(t, err, ErrInvalidCorpus)
}

func TestAppErrorUnwraps(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusUnprocessableEntity, "limit %q", "abc")
	wrapped := fmt.Errorf("handling search: %w", err)

	assert.ErrorIs(t, wrapped, ErrInvalidInput)
	assert.Equal(t, `invalid input: limit "abc"`, err.Error())
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusCode(wrapped))
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"invalid configuration", InvalidConfiguration("b = 2"), http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"worker failure", fmt.Errorf("term %q: %w", "dog", ErrWorkerFailure), http.StatusInternalServerError},
		{"corpus", InvalidCorpus("empty"), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"context", context.Canceled, http.StatusInternalServerError},
		{"app error", New(ErrInternal, http.StatusTeapot, "x"), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}
