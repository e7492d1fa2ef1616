package flow

import "strings"

// PinBuffer is the fixed-length, numeric-only PIN entry buffer. It is
// append-only up to its fixed length; non-digit keypresses are ignored
// and backspace removes the last digit. The buffer length is always
// within [0, fixed length].
type PinBuffer struct {
	fixedLength int
	digits      strings.Builder
}

// NewPinBuffer creates a buffer for a PIN of the given fixed length.
func NewPinBuffer(fixedLength int) *PinBuffer {
	return &PinBuffer{fixedLength: fixedLength}
}

// Press appends one digit. Non-digit runes and presses past the fixed
// length leave the buffer unchanged.
func (buffer *PinBuffer) Press(key rune) {
	if key < '0' || key > '9' {
		return
	}
	if buffer.digits.Len() >= buffer.fixedLength {
		return
	}
	buffer.digits.WriteRune(key)
}

// Backspace removes the last digit, if any.
func (buffer *PinBuffer) Backspace() {
	current := buffer.digits.String()
	if current == "" {
		return
	}
	buffer.digits.Reset()
	buffer.digits.WriteString(current[:len(current)-1])
}

// Clear empties the buffer, e.g. after a rejected confirm.
func (buffer *PinBuffer) Clear() {
	buffer.digits.Reset()
}

// Value returns the digits entered so far.
func (buffer *PinBuffer) Value() string {
	return buffer.digits.String()
}

// Len returns the number of digits entered.
func (buffer *PinBuffer) Len() int {
	return buffer.digits.Len()
}

// Full reports whether the buffer reached its fixed length.
func (buffer *PinBuffer) Full() bool {
	return buffer.digits.Len() == buffer.fixedLength
}
