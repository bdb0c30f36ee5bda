package positionid

import (
	"errors"
	"fmt"
)

// TextLength is the length of the textual form of a Key.
const TextLength = 2 * len(Key{})

// ErrInvalidFormat is returned for position text that is not exactly
// TextLength letters in 'A'..'P'.
var ErrInvalidFormat = errors.New("invalid position text")

// ValidText reports whether s is well-formed position text.
func ValidText(s string) bool {
	if len(s) != TextLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'P' {
			return false
		}
	}
	return true
}

// DecodeText parses position text. Each key byte is two letters, high
// nibble first, 'A' standing for 0.
func DecodeText(s string) (Key, error) {
	var key Key
	if len(s) != TextLength {
		return key, fmt.Errorf("%w: length %d", ErrInvalidFormat, len(s))
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'P' {
			return key, fmt.Errorf("%w: %q at offset %d", ErrInvalidFormat, s[i], i)
		}
	}
	for i := range key {
		key[i] = (s[2*i]-'A')<<4 | (s[2*i+1] - 'A')
	}
	return key, nil
}

// EncodeText renders key as position text.
func EncodeText(key Key) string {
	var buf [TextLength]byte
	for i, b := range key {
		buf[2*i] = 'A' + b>>4
		buf[2*i+1] = 'A' + b&0x0f
	}
	return string(buf[:])
}

// Text returns the position text of key.
func (key Key) Text() string { return EncodeText(key) }

// BoardFromText decodes position text into a board.
func BoardFromText(s string) (Board, error) {
	key, err := DecodeText(s)
	if err != nil {
		return Board{}, err
	}
	return BoardFromKey(key), nil
}

// TextFromBoard encodes board as position text.
func TextFromBoard(board Board) string {
	return EncodeText(MakeKey(board))
}
