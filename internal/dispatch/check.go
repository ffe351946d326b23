package dispatch

import (
	"fmt"
	"strings"
)

// CheckMode selects what happens when a dispatch rule is broken.
type CheckMode int

const (
	// CheckOff ignores the violation.
	CheckOff CheckMode = iota
	// CheckLog logs the violation and lets the dispatch continue.
	CheckLog
	// CheckError logs the violation and aborts the dispatch.
	CheckError
)

func (m CheckMode) String() string {
	switch m {
	case CheckOff:
		return "off"
	case CheckLog:
		return "log"
	case CheckError:
		return "error"
	default:
		return fmt.Sprintf("check_mode(%d)", int(m))
	}
}

// ParseCheckMode accepts "off", "log" and "error". The empty string is
// rejected so configuration defaults stay explicit.
func ParseCheckMode(s string) (CheckMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return CheckOff, nil
	case "log":
		return CheckLog, nil
	case "error":
		return CheckError, nil
	default:
		return CheckOff, fmt.Errorf("invalid check mode %q, expected off, log or error", s)
	}
}

// Options tunes the dispatcher.
type Options struct {
	// RecursiveDispatch applies when a handler dispatches another command.
	RecursiveDispatch CheckMode
	// MultipleDispatch applies to a second dispatch within one frame.
	MultipleDispatch CheckMode
	// RollbackOnError restores the undoable components when a handler
	// fails or panics.
	RollbackOnError bool
}

// DefaultOptions rejects recursion and only logs repeated dispatches.
func DefaultOptions() Options {
	return Options{
		RecursiveDispatch: CheckError,
		MultipleDispatch:  CheckLog,
	}
}
