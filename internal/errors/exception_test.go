package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusCode(ErrTaskNotFound))
	assert.Equal(t, http.StatusNotFound, StatusCode(fmt.Errorf("close task: %w", ErrTaskNotFound)))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(ErrAuthRequired))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("disk full")))
}

func TestValidation(t *testing.T) {
	err := Validation("priority %d is out of range", 7)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, "invalid task: priority 7 is out of range", err.Error())
}
