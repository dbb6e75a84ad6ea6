package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := NotFound("User with id %d not found", 9999)

	assert.Equal(t, "User with id 9999 not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrBadRequest))
	assert.Equal(t, KindNotFound, KindOf(err))

	wrapped := fmt.Errorf("get item: %w", BadRequest("Item with id %d is not available", 3))
	assert.True(t, errors.Is(wrapped, ErrBadRequest))
	assert.Equal(t, KindBadRequest, KindOf(wrapped))

	assert.Equal(t, KindConflict, KindOf(Conflict("dup")))
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "bad_request", KindBadRequest.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
