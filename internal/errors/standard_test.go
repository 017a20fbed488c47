package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		category ErrorCategory
		prefix   string
	}{
		{"config", InvalidConfig("lpcheck.yaml", io.ErrUnexpectedEOF), CategoryConfig, "[CONFIG:INVALID_CONFIG] invalid configuration lpcheck.yaml"},
		{"tree", InvalidTree("g.yaml", io.EOF), CategoryInput, "[INPUT:INVALID_TREE] invalid grammar tree g.yaml"},
		{"oracle", OracleFailure("rust-oracle", io.EOF), CategoryOracle, `[ORACLE:ORACLE_FAILURE] type oracle "rust-oracle" failed`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.err.Error(), tt.prefix), tt.err.Error())
			assert.NotEqual(t, "unknown", tt.err.Caller)

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.category, CategoryOf(wrapped))
			assert.NotNil(t, errors.Unwrap(tt.err))
		})
	}

	assert.Equal(t, ErrorCategory(""), CategoryOf(io.EOF))
	assert.True(t, errors.Is(InvalidTree("x", io.EOF), io.EOF))
}
