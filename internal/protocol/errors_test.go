package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for code := range knownCodes {
		if !IsKnownCode(code) {
			t.Fatalf("expected known code: %q", code)
		}
	}
	if !IsKnownCode("") {
		t.Fatalf("empty code means success")
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestNewError_Retryable(t *testing.T) {
	cases := []struct {
		code      string
		retryable bool
	}{
		{ErrRateLimit, true},
		{ErrWorldBusy, true},
		{ErrCooldown, true},
		{ErrUnauthorized, false},
		{ErrConflict, false},
		{"E_NOT_DEFINED", false},
	}
	for _, tc := range cases {
		e := NewError(tc.code, "x")
		if e.Type != TypeError || e.ProtocolVersion != Version || e.Code != tc.code {
			t.Fatalf("frame=%+v", e)
		}
		if e.Retryable != tc.retryable {
			t.Fatalf("%s retryable=%v want %v", tc.code, e.Retryable, tc.retryable)
		}
	}
}
