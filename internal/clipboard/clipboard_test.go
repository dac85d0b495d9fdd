package clipboard

import (
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	var m Memory
	if err := m.WriteAll("hello"); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, err := m.ReadAll()
	if err != nil || got != "hello" {
		t.Fatalf("ReadAll = %q, %v", got, err)
	}

	m.Deny = true
	var ae AccessError
	if err := m.WriteAll("nope"); !errors.As(err, &ae) || ae.Op != "write" {
		t.Fatalf("expected write AccessError, got %v", err)
	}
	if _, err := m.ReadAll(); !errors.As(err, &ae) || ae.Op != "read" {
		t.Fatalf("expected read AccessError, got %v", err)
	}
	m.Deny = false
	if got, _ := m.ReadAll(); got != "hello" {
		t.Fatalf("denied write must not change contents, got %q", got)
	}
}
