package store

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("loading: %w", WrapError(RetCDecodeFailed, "decode snapshot", io.ErrUnexpectedEOF))

	if !errors.Is(err, &Error{Code: RetCDecodeFailed}) {
		t.Errorf("Expected error to match RetCDecodeFailed")
	}
	if errors.Is(err, &Error{Code: RetCReadFailed}) {
		t.Errorf("Expected error not to match RetCReadFailed")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Expected the cause to be reachable")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RetCode
	}{
		{"nil", nil, RetCSuccess},
		{"plain", NewError(RetCClosed, "closed"), RetCClosed},
		{"wrapped", fmt.Errorf("x: %w", NewError(RetCFlushFailed, "sync")), RetCFlushFailed},
		{"foreign", errors.New("boom"), RetCInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	e := NewError(RetCWriteLockFailed, "lock busy")
	if e.Error() != "StoreError (code WriteLockFailed): lock busy" {
		t.Errorf("Unexpected message: %s", e.Error())
	}

	e = WrapError(RetCSeekFailed, "seek", io.EOF)
	if e.Error() != "StoreError (code SeekFailed): seek: EOF" {
		t.Errorf("Unexpected message: %s", e.Error())
	}

	if RetCode(999).String() != "Unknown" {
		t.Errorf("Expected Unknown for an undefined code")
	}
}
