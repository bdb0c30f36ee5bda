// Package positionid converts backgammon boards to and from their compact
// encodings: the 80-bit run-length key used in command files and caches,
// its 20-letter text form and the 14-character gnubg base64 ID.
package positionid

import (
	"encoding/base64"
	"errors"
)

// IDLength is the length of a gnubg base64 position ID.
const IDLength = 14

// Board holds checker counts as [side][point]; point 24 is the bar and
// side 1 is the player on roll.
type Board [2][25]uint8

// Key is the 80-bit position key. Each side's points 0..24 are written as a
// run of 1-bits (one per checker) terminated by a 0-bit, side 0 first,
// least significant bit of each byte first.
type Key [10]byte

const keyBits = len(Key{}) * 8

// MakeKey builds the key of board. Boards with more than 15 checkers a side
// do not fit; the bits past the end are dropped.
func MakeKey(board Board) Key {
	var key Key
	pos := 0
	for _, side := range board {
		for _, n := range side {
			for range n {
				if pos < keyBits {
					key[pos/8] |= 1 << (pos % 8)
				}
				pos++
			}
			pos++
		}
	}
	return key
}

// BoardFromKey decodes a key. Bits past the 50th terminator are ignored.
func BoardFromKey(key Key) Board {
	var board Board
	side, point := 0, 0
	for pos := 0; pos < keyBits && side < 2; pos++ {
		if key[pos/8]&(1<<(pos%8)) != 0 {
			board[side][point]++
			continue
		}
		if point++; point == 25 {
			side, point = side+1, 0
		}
	}
	return board
}

// ID returns the gnubg base64 position ID of key.
func (key Key) ID() string {
	return base64.RawStdEncoding.EncodeToString(key[:])
}

// PositionID returns the gnubg base64 position ID of board.
func PositionID(board Board) string {
	return MakeKey(board).ID()
}

// ErrInvalidPositionID is returned for malformed or illegal base64 IDs.
var ErrInvalidPositionID = errors.New("invalid position ID")

// BoardFromPositionID decodes a gnubg base64 position ID. Characters after
// the first IDLength are ignored.
func BoardFromPositionID(id string) (Board, error) {
	if len(id) < IDLength {
		return Board{}, ErrInvalidPositionID
	}
	raw, err := base64.RawStdEncoding.DecodeString(id[:IDLength])
	if err != nil {
		return Board{}, ErrInvalidPositionID
	}
	var key Key
	copy(key[:], raw)
	board := BoardFromKey(key)
	if !CheckPosition(board) {
		return board, ErrInvalidPositionID
	}
	return board, nil
}

// CheckPosition reports whether board is a legal position: at most 15
// checkers a side, no point held by both, and not both sides on the bar
// against closed boards.
func CheckPosition(board Board) bool {
	for _, side := range board {
		n := 0
		for _, c := range side {
			n += int(c)
		}
		if n > 15 {
			return false
		}
	}
	for p := range 24 {
		if board[0][p] > 0 && board[1][23-p] > 0 {
			return false
		}
	}
	if board[0][24] == 0 || board[1][24] == 0 {
		return true
	}
	for p := range 6 {
		if board[0][p] < 2 || board[1][p] < 2 {
			return true
		}
	}
	return false
}
