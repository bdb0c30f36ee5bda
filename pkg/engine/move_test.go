package engine

import (
	"testing"
)

func TestGenerateMovesStartingPosition31(t *testing.T) {
	board := StartingPosition()
	ml := GenerateMoves(board, 3, 1)

	if ml.Len() == 0 {
		t.Fatal("Expected legal moves for 3-1 from starting position")
	}
	t.Logf("Generated %d moves for 3-1 from starting position", ml.Len())

	for i, m := range ml.Moves {
		if m.From[0] < 0 || m.From[1] < 0 {
			t.Errorf("Move %d doesn't use both dice: From=%v To=%v", i, m.From, m.To)
		}
		if m.From[2] >= 0 {
			t.Errorf("Move %d uses more than 2 dice for non-doubles: From=%v", i, m.From)
		}
	}
}

func TestGenerateMovesStartingPosition66(t *testing.T) {
	board := StartingPosition()
	ml := GenerateMoves(board, 6, 6)

	if ml.Len() == 0 {
		t.Fatal("Expected legal moves for 6-6 from starting position")
	}

	for i, m := range ml.Moves {
		if m.From[0] < 0 || m.From[1] < 0 || m.From[2] < 0 || m.From[3] < 0 {
			t.Errorf("Move %d doesn't use all 4 dice for doubles: From=%v To=%v", i, m.From, m.To)
		}
	}
}

func TestGenerateMovesBarEntry(t *testing.T) {
	board := StartingPosition()
	board[1][23] = 1
	board[1][24] = 1

	ml := GenerateMoves(board, 3, 1)
	if ml.Len() == 0 {
		t.Fatal("Expected moves entering from the bar")
	}
	for i, m := range ml.Moves {
		if m.From[0] != 24 {
			t.Errorf("Move %d doesn't start from bar: From=%v", i, m.From)
		}
	}
}

func TestGenerateMovesBlocked(t *testing.T) {
	var board Board
	board[1][24] = 1
	board[1][5] = 5

	// the opponent's home points are where side 1 enters
	for i := 0; i < 6; i++ {
		board[0][i] = 2
	}

	ml := GenerateMoves(board, 3, 1)
	if ml.Len() != 0 {
		t.Errorf("Expected 0 moves when bar entry is blocked, got %d", ml.Len())
	}
}

func TestGenerateMovesEntryPoint(t *testing.T) {
	var board Board
	board[1][24] = 1
	board[1][5] = 5
	// only the 4 point is open
	for i := 0; i < 6; i++ {
		if i != 3 {
			board[0][i] = 2
		}
	}
	board[0][20] = 3

	ml := GenerateMoves(board, 4, 4)
	if ml.Len() == 0 {
		t.Fatal("Expected entry on the open point")
	}
	for i, m := range ml.Moves {
		if m.From[0] != 24 || m.To[0] != 20 {
			t.Errorf("Move %d enters wrong: From=%v To=%v", i, m.From, m.To)
		}
	}
}

func TestGenerateMovesBearoff(t *testing.T) {
	var board Board
	board[1][0] = 3
	board[1][1] = 3
	board[1][2] = 3
	board[1][3] = 3
	board[1][4] = 2
	board[1][5] = 1

	ml := GenerateMoves(board, 6, 5)
	if ml.Len() == 0 {
		t.Fatal("Expected legal bearoff moves")
	}
	for i, b := range ml.Boards {
		if n := b.Checkers(1); n > 14 {
			t.Errorf("Move %d bears nothing off: %d checkers left", i, n)
		}
	}
}

func TestGenerateMovesHit(t *testing.T) {
	var board Board
	board[1][7] = 2
	board[0][18] = 1 // side 1's 6 point
	board[0][10] = 14

	ml := GenerateMoves(board, 2, 1)
	hits := 0
	for i, m := range ml.Moves {
		if CountHits(board, m) > 0 {
			hits++
			if ml.Boards[i][0][24] != 1 {
				t.Errorf("Hitting move %d left bar=%d", i, ml.Boards[i][0][24])
			}
		}
	}
	if hits == 0 {
		t.Error("Expected a hitting move")
	}
}

func TestApplyMove(t *testing.T) {
	board := StartingPosition()
	ml := GenerateMoves(board, 3, 1)
	if ml.Len() == 0 {
		t.Fatal("No moves generated")
	}

	for i, m := range ml.Moves {
		if got := ApplyMove(board, m); got != ml.Boards[i] {
			t.Errorf("ApplyMove(%d) = %s, want %s", i, got.Text(), ml.Boards[i].Text())
		}
	}
}

func TestNoDuplicateMoves(t *testing.T) {
	board := StartingPosition()
	ml := GenerateMoves(board, 3, 1)

	seen := make(map[string]bool)
	for i, b := range ml.Boards {
		key := b.Text()
		if seen[key] {
			t.Errorf("Duplicate move at index %d", i)
		}
		seen[key] = true
	}
}
