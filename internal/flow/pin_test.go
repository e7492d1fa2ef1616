package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPinBuffer_AppendsDigits(t *testing.T) {
	buffer := NewPinBuffer(5)

	buffer.Press('1')
	buffer.Press('2')
	buffer.Press('3')

	assert.Equal(t, "123", buffer.Value())
	assert.Equal(t, 3, buffer.Len())
	assert.False(t, buffer.Full())
}

func TestPinBuffer_IgnoresNonDigits(t *testing.T) {
	buffer := NewPinBuffer(5)

	buffer.Press('1')
	buffer.Press('a')
	buffer.Press('*')
	buffer.Press(' ')
	buffer.Press('2')

	assert.Equal(t, "12", buffer.Value())
}

func TestPinBuffer_StopsAtFixedLength(t *testing.T) {
	buffer := NewPinBuffer(4)

	for _, key := range "123456789" {
		buffer.Press(key)
	}

	assert.Equal(t, "1234", buffer.Value())
	assert.True(t, buffer.Full())
}

func TestPinBuffer_Backspace(t *testing.T) {
	buffer := NewPinBuffer(5)

	buffer.Press('1')
	buffer.Press('2')
	buffer.Backspace()

	assert.Equal(t, "1", buffer.Value())

	buffer.Backspace()
	buffer.Backspace() // empty buffer is a no-op
	assert.Equal(t, "", buffer.Value())
	assert.Equal(t, 0, buffer.Len())
}

func TestPinBuffer_Clear(t *testing.T) {
	buffer := NewPinBuffer(5)
	for _, key := range "12345" {
		buffer.Press(key)
	}

	buffer.Clear()

	assert.Equal(t, "", buffer.Value())
	assert.False(t, buffer.Full())
}

func TestPinBuffer_LengthStaysInBounds(t *testing.T) {
	buffer := NewPinBuffer(5)

	keys := []rune{'1', 'x', '2', '3', '4', '5', '6', '7'}
	for _, key := range keys {
		buffer.Press(key)
		assert.GreaterOrEqual(t, buffer.Len(), 0)
		assert.LessOrEqual(t, buffer.Len(), 5)
	}
	for i := 0; i < 10; i++ {
		buffer.Backspace()
		assert.GreaterOrEqual(t, buffer.Len(), 0)
		assert.LessOrEqual(t, buffer.Len(), 5)
	}
}
