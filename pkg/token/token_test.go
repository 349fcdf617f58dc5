package token

import "testing"

func TestNew(t *testing.T) {
	a, err := New("ho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := New("ho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Fatal("tokens must not repeat")
	}
	if !HasPrefix(a, "ho") {
		t.Fatalf("missing prefix: %s", a)
	}
	if HasPrefix(a, "q") {
		t.Fatalf("wrong prefix matched: %s", a)
	}
}
