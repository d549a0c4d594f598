package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Code(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "user exists", err: ErrUserAlreadyExists, code: CodeUserAlreadyExists},
		{name: "user not found", err: ErrUserNotFound, code: CodeUserNotFound},
		{name: "invalid credentials", err: ErrInvalidCredentials, code: CodeInvalidCredentials},
		{name: "invalid input", err: ErrInvalidInput, code: CodeInvalidInput},
		{name: "token not found", err: ErrTokenNotFound, code: CodeTokenNotFound},
		{name: "token expired", err: ErrTokenExpired, code: CodeTokenExpired},
		{name: "reuse detected", err: ErrReuseDetected, code: CodeReuseDetected},
		{name: "storage unavailable", err: ErrStorageUnavailable, code: CodeStorageUnavailable},
		{name: "wrapped error keeps its code", err: fmt.Errorf("repo error: %w", ErrTokenExpired), code: CodeTokenExpired},
		{name: "unknown error is infra fault", err: errors.New("connection reset"), code: CodeStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, Code(tt.err))
		})
	}
}
