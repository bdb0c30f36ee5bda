package positionid

import (
	"testing"

	"github.com/matryer/is"
)

// startingBoard is the opening position from both sides' point of view.
func startingBoard() Board {
	var board Board
	for side := range board {
		board[side][5], board[side][7], board[side][12], board[side][23] = 5, 3, 5, 2
	}
	return board
}

// gnubg's ID of the opening position
const startingPositionID = "4HPwATDgc/ABMA"

func TestPositionID(t *testing.T) {
	is := is.New(t)

	is.Equal(PositionID(startingBoard()), startingPositionID)

	board, err := BoardFromPositionID(startingPositionID + "trailing")
	is.NoErr(err)
	is.Equal(board, startingBoard())

	_, err = BoardFromPositionID("4HPw")
	is.Equal(err, ErrInvalidPositionID)
	_, err = BoardFromPositionID("4HPwATDgc/AB*A")
	is.Equal(err, ErrInvalidPositionID)
}

func TestKeyLayout(t *testing.T) {
	is := is.New(t)

	// one checker on side 0's ace, then 49 terminators
	var b Board
	b[0][0] = 1
	key := MakeKey(b)
	is.Equal(key[0], byte(0b01))
	is.Equal(BoardFromKey(key), b)

	// fifteen on the bar still fit
	b = Board{}
	b[1][24] = 15
	is.Equal(BoardFromKey(MakeKey(b)), b)
}

func TestKeyRoundTrip(t *testing.T) {
	is := is.New(t)

	board := startingBoard()
	board[0][24], board[0][23] = 1, 1
	board[1][5] = 3
	board[1][24] = 2
	is.Equal(BoardFromKey(MakeKey(board)), board)
}

func TestCheckPosition(t *testing.T) {
	is := is.New(t)

	is.True(CheckPosition(startingBoard()))

	var crowded Board
	for i := range 25 {
		crowded[0][i] = 1
	}
	is.True(!CheckPosition(crowded)) // more than 15 checkers

	var overlap Board
	overlap[0][5] = 2
	overlap[1][18] = 2
	is.True(!CheckPosition(overlap)) // both sides on one point

	var closed Board
	for i := range 6 {
		closed[0][i], closed[1][i] = 2, 2
	}
	closed[0][24] = 1
	is.True(CheckPosition(closed)) // only one side on the bar
	closed[1][24] = 1
	is.True(!CheckPosition(closed)) // both on the bar against closed boards
}
