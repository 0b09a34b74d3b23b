package ax

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidElement is returned by every operation on an element that has
	// been invalidated, mirroring kAXErrorInvalidUIElement.
	ErrInvalidElement = errors.New("invalid UI element")

	// ErrTypeMismatch is returned when a value does not have the shape the
	// caller or the attribute requires.
	ErrTypeMismatch = errors.New("attribute type mismatch")

	// ErrMessagingTimeout is returned when a main queue hop does not complete
	// within the tree's messaging timeout.
	ErrMessagingTimeout = errors.New("messaging timeout")

	// ErrQueueClosed is returned when work is submitted to a closed main queue.
	ErrQueueClosed = errors.New("main queue closed")
)

// Wrap adds context to err, returning nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func mismatch(want, got ValueKind) error {
	return fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want, got)
}
