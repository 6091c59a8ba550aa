package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Size is the side length of the board.
const Size = 3

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidBoard  = errors.New("invalid board")
	ErrInvalidCell   = errors.New("invalid cell value")
)

// Cell is the content of a single square.
type Cell uint8

const (
	Empty Cell = iota
	CellX
	CellO
)

// Mark is a player's mark. The zero value means "no mark".
type Mark uint8

const (
	X Mark = Mark(CellX)
	O Mark = Mark(CellO)
)

func (that Cell) Mark() (Mark, bool) {
	switch that {
	case CellX:
		return X, true
	case CellO:
		return O, true
	default:
		return 0, false
	}
}

func (that Cell) String() string {
	switch that {
	case CellX:
		return "X"
	case CellO:
		return "O"
	default:
		return ""
	}
}

func (that Cell) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Cell) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*that = CellX
	case "O":
		*that = CellO
	case "":
		*that = Empty
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCell, text)
	}

	return nil
}

// Cell returns the cell value holding this mark.
func (that Mark) Cell() Cell {
	return Cell(that)
}

// Opponent returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == X {
		return O
	}
	return X
}

func (that Mark) String() string {
	return Cell(that).String()
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	var cell Cell
	if err := cell.UnmarshalText(text); err != nil {
		return err
	}

	*that = Mark(cell)

	return nil
}

// Action references a single cell by row and column.
type Action struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether both coordinates are on the board.
func (that Action) Valid() bool {
	return that.Row >= 0 && that.Row < Size && that.Col >= 0 && that.Col < Size
}

func (that Action) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Board is a 3x3 grid indexed [row][col]. It is a value type: copies never share cells.
type Board [Size][Size]Cell

// Key encodes the board row-major using X, O and '.' for empty cells.
func (that Board) Key() string {
	var sb strings.Builder
	sb.Grow(Size * Size)

	for _, row := range that {
		for _, cell := range row {
			switch cell {
			case CellX:
				sb.WriteByte('X')
			case CellO:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
	}

	return sb.String()
}

func (that Board) String() string {
	rows := make([]string, 0, Size)
	for _, row := range that {
		cells := make([]string, 0, Size)
		for _, cell := range row {
			if cell == Empty {
				cells = append(cells, " ")
				continue
			}
			cells = append(cells, cell.String())
		}
		rows = append(rows, strings.Join(cells, "|"))
	}

	return strings.Join(rows, "\n")
}

// UnmarshalJSON accepts exactly Size rows of Size cells. Encoding uses the array default.
func (that *Board) UnmarshalJSON(data []byte) error {
	var rows [][]Cell
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	if len(rows) != Size {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidBoard, Size, len(rows))
	}

	var board Board
	for r, row := range rows {
		if len(row) != Size {
			return fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, r, len(row))
		}
		copy(board[r][:], row)
	}

	*that = board

	return nil
}

// ParseBoard decodes a key produced by Board.Key.
func ParseBoard(key string) (Board, error) {
	var board Board

	if len(key) != Size*Size {
		return board, fmt.Errorf("%w: key %q must have %d cells", ErrInvalidBoard, key, Size*Size)
	}

	for i := 0; i < len(key); i++ {
		row, col := i/Size, i%Size
		switch key[i] {
		case 'X':
			board[row][col] = CellX
		case 'O':
			board[row][col] = CellO
		case '.':
			board[row][col] = Empty
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidBoard, key[i], i)
		}
	}

	return board, nil
}

// Validate checks the turn alternation invariant: X has as many marks as O or one more.
// The search itself does not guard against boards that fail it.
func (that Board) Validate() error {
	var xs, os int
	for _, row := range that {
		for _, cell := range row {
			switch cell {
			case Empty:
			case CellX:
				xs++
			case CellO:
				os++
			default:
				return fmt.Errorf("%w: %d", ErrInvalidCell, cell)
			}
		}
	}

	if diff := xs - os; diff != 0 && diff != 1 {
		return fmt.Errorf("%w: %d X marks and %d O marks", ErrInvalidBoard, xs, os)
	}

	return nil
}
