package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		check    func(error) bool
	}{
		{"validation", NewValidation("bad input"), ErrorTypeValidation, IsValidation},
		{"duplicate id", NewDuplicateID("node", "orders"), ErrorTypeDuplicateID, IsDuplicateID},
		{"dangling edge", NewDanglingEdge("e1", "missing"), ErrorTypeDanglingEdge, IsDanglingEdge},
		{"unknown target", NewUnknownTarget("node", "ghost"), ErrorTypeUnknownTarget, IsUnknownTarget},
		{"unauthorized", NewUnauthorized("not the author"), ErrorTypeUnauthorized, IsUnauthorized},
		{"not found", NewNotFound("snapshot"), ErrorTypeNotFound, IsNotFound},
		{"internal", NewInternal("boom", errors.New("cause")), ErrorTypeInternal, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *AppError
			require.ErrorAs(t, tt.err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.True(t, tt.check(tt.err))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewDanglingEdge("e1", "n9")
	wrapped := Wrap(base, "ingesting edge")

	assert.True(t, IsDanglingEdge(wrapped))
	assert.Contains(t, wrapped.Error(), "ingesting edge")
	assert.Contains(t, wrapped.Error(), "n9")
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(errors.New("io failure"), "loading config")

	assert.True(t, IsInternal(wrapped))
	assert.ErrorContains(t, wrapped, "io failure")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestUnwrapThroughFmt(t *testing.T) {
	base := NewUnknownTarget("edge", "e7")
	wrapped := fmt.Errorf("query failed: %w", base)

	assert.True(t, IsUnknownTarget(wrapped))
}
