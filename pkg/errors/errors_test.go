package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"memory bound", New(ErrCodeInvalidParams, "memory bound must be positive: %d", -4), "INVALID_PARAMS: memory bound must be positive: -4"},
		{"unknown algorithm", New(ErrCodeUnknownAlgorithm, "unknown algorithm %q", "dtree"), `UNKNOWN_ALGORITHM: unknown algorithm "dtree"`},
		{"wrapped cause", Wrap(ErrCodeCancelled, context.Canceled, "%s aborted", "ltree"), "CANCELLED: ltree aborted: context canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeCancelled, context.DeadlineExceeded, "exhaustive aborted")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, DeadlineExceeded) = false")
	}
	if errors.Unwrap(err) != context.DeadlineExceeded {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}
	if err.Message != "exhaustive aborted" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIs(t *testing.T) {
	pathErr := New(ErrCodeUnreachablePath, "node 7 is not below root 2")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"same code", pathErr, ErrCodeUnreachablePath, true},
		{"other code", pathErr, ErrCodeInvalidTree, false},
		{"fmt wrapped", fmt.Errorf("partition chain: %w", pathErr), ErrCodeUnreachablePath, true},
		{"outer code wins", Wrap(ErrCodeInternal, pathErr, "rebuild"), ErrCodeInternal, true},
		{"inner code hidden", Wrap(ErrCodeInternal, pathErr, "rebuild"), ErrCodeUnreachablePath, false},
		{"plain", context.Canceled, ErrCodeCancelled, false},
		{"nil", nil, ErrCodeInvalidTree, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"run lookup", New(ErrCodeRunNotFound, "run %s", "4f1c"), ErrCodeRunNotFound, "run 4f1c"},
		{"exhaustive limit", New(ErrCodeTooLarge, "exhaustive search is limited to %d nodes", 20), ErrCodeTooLarge, "exhaustive search is limited to 20 nodes"},
		{"redis", Wrap(ErrCodeBackend, errors.New("connection refused"), "redis get"), ErrCodeBackend, "redis get"},
		{"plain", errors.New("disk full"), "", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
	if GetCode(nil) != "" {
		t.Error("GetCode(nil) should be empty")
	}
}

func TestIsContractViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid tree", New(ErrCodeInvalidTree, "node 3 has two callers"), true},
		{"unreachable path", New(ErrCodeUnreachablePath, "tail 7"), true},
		{"bad partition", New(ErrCodeInvalidPartition, "block [2 4] is not connected"), true},
		{"unknown algorithm", New(ErrCodeUnknownAlgorithm, "dtree"), true},
		{"too large", New(ErrCodeTooLarge, "25 nodes"), true},
		{"wrapped params", fmt.Errorf("api: %w", Wrap(ErrCodeInvalidParams, errors.New("N=0"), "params")), true},
		{"cancelled", Wrap(ErrCodeCancelled, context.Canceled, "btree aborted"), false},
		{"backend", New(ErrCodeBackend, "mongo down"), false},
		{"missing run", New(ErrCodeRunNotFound, "run 4f1c"), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsContractViolation(tt.err); got != tt.want {
				t.Errorf("IsContractViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
