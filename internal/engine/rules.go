package engine

import "fmt"

// lines lists every three-in-a-row in the order Winner checks them.
var lines = [8][3]Action{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// InitialState returns the empty board.
func InitialState() Board {
	return Board{}
}

// CurrentPlayer returns the mark to move. X moves on boards with an even number of marks.
func CurrentPlayer(board Board) Mark {
	if filled(board)%2 == 1 {
		return O
	}
	return X
}

// LegalActions returns every empty cell in row-major order.
func LegalActions(board Board) []Action {
	actions := make([]Action, 0, Size*Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if board[row][col] == Empty {
				actions = append(actions, Action{Row: row, Col: col})
			}
		}
	}

	return actions
}

// ApplyAction returns a copy of board with the current player's mark at action.
func ApplyAction(board Board, action Action) (Board, error) {
	if !action.Valid() {
		return board, fmt.Errorf("%w: %s is off the board", ErrInvalidAction, action)
	}

	if board[action.Row][action.Col] != Empty {
		return board, fmt.Errorf("%w: %s is occupied", ErrInvalidAction, action)
	}

	next := board
	next[action.Row][action.Col] = CurrentPlayer(board).Cell()

	return next, nil
}

// Winner returns the mark that completed a line, if any.
func Winner(board Board) (Mark, bool) {
	for _, line := range lines {
		a := board[line[0].Row][line[0].Col]
		b := board[line[1].Row][line[1].Col]
		c := board[line[2].Row][line[2].Col]
		if a != Empty && a == b && b == c {
			return a.Mark()
		}
	}

	return 0, false
}

// IsTerminal reports whether the game is over by a win or a full board.
func IsTerminal(board Board) bool {
	if _, ok := Winner(board); ok {
		return true
	}

	return filled(board) == Size*Size
}

// Utility scores board from X's point of view. Boards without a winner score 0,
// whether or not they are terminal.
func Utility(board Board) int {
	winner, ok := Winner(board)
	switch {
	case ok && winner == X:
		return 1
	case ok && winner == O:
		return -1
	default:
		return 0
	}
}

func filled(board Board) int {
	count := 0
	for _, row := range board {
		for _, cell := range row {
			if cell != Empty {
				count++
			}
		}
	}

	return count
}
