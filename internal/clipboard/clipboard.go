// Package clipboard reads and writes the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// AccessError reports that the clipboard could not be read or written.
type AccessError struct {
	Op  string
	Err error
}

func (e AccessError) Error() string {
	return fmt.Sprintf("clipboard %s failed: %v", e.Op, e.Err)
}

func (e AccessError) Unwrap() error { return e.Err }

type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// System uses the platform clipboard (pbcopy, clip, wl-copy, xclip or xsel).
type System struct{}

func (System) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", AccessError{Op: "read", Err: errUnsupported}
	}
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", AccessError{Op: "read", Err: err}
	}
	return strings.ReplaceAll(s, "\r\n", "\n"), nil
}

func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return AccessError{Op: "write", Err: errUnsupported}
	}
	if err := clipboard.WriteAll(text); err != nil {
		return AccessError{Op: "write", Err: err}
	}
	return nil
}

var errUnsupported = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")

// Memory is an in-process clipboard. Setting Deny makes every access fail.
type Memory struct {
	mu   sync.Mutex
	text string
	Deny bool
}

func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Deny {
		return "", AccessError{Op: "read", Err: errDenied}
	}
	return m.text, nil
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Deny {
		return AccessError{Op: "write", Err: errDenied}
	}
	m.text = text
	return nil
}

var errDenied = errors.New("permission denied")
