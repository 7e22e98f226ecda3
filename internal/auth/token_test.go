package auth

import (
	"testing"
	"time"
)

func TestSigner_IssueValidate(t *testing.T) {
	s, err := NewSigner("secret", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	tok, err := s.Issue("Steve", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := s.Validate(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.PlayerName != "Steve" || !c.Admin || c.Subject != "Steve" {
		t.Fatalf("claims=%+v", c)
	}
}

func TestSigner_RejectsOtherKeyAndExpired(t *testing.T) {
	a, _ := NewSigner("a", time.Hour)
	b, _ := NewSigner("b", time.Hour)
	tok, _ := a.Issue("Steve", false)
	if _, err := b.Validate(tok); err == nil {
		t.Fatalf("foreign key should fail")
	}

	now := time.Unix(1_700_000_000, 0)
	a.now = func() time.Time { return now }
	tok, _ = a.Issue("Steve", false)
	now = now.Add(2 * time.Hour)
	if _, err := a.Validate(tok); err == nil {
		t.Fatalf("expired token should fail")
	}
}

func TestNewSigner_EmptySecret(t *testing.T) {
	if _, err := NewSigner("  ", time.Hour); err != ErrNoSecret {
		t.Fatalf("err=%v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer  xyz": "xyz",
		"Basic abc":   "",
		"":            "",
	}
	for in, want := range cases {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q)=%q want %q", in, got, want)
		}
	}
}

func TestGenerateSecret(t *testing.T) {
	if a, b := GenerateSecret(), GenerateSecret(); len(a) != 64 || a == b {
		t.Fatalf("a=%q b=%q", a, b)
	}
}
