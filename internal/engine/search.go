package engine

import "math"

// Minimax returns the optimal action for the player to move, or false when
// the board is terminal. Among equally valued actions the first one in
// LegalActions order is kept.
func Minimax(board Board) (Action, bool) {
	if IsTerminal(board) {
		return Action{}, false
	}

	var best result
	if CurrentPlayer(board) == X {
		best = maxValue(board, math.MinInt, math.MaxInt)
	} else {
		best = minValue(board, math.MinInt, math.MaxInt)
	}

	return best.action, best.found
}

// Value returns the outcome of board under optimal play by both sides.
func Value(board Board) int {
	if CurrentPlayer(board) == X {
		return maxValue(board, math.MinInt, math.MaxInt).value
	}
	return minValue(board, math.MinInt, math.MaxInt).value
}

type result struct {
	value  int
	action Action
	found  bool
}

func maxValue(board Board, alpha, beta int) result {
	if IsTerminal(board) {
		return result{value: Utility(board)}
	}

	best := result{value: math.MinInt}
	for _, action := range LegalActions(board) {
		// actions come from LegalActions, ApplyAction cannot fail here
		child, _ := ApplyAction(board, action)

		value := minValue(child, alpha, beta).value
		if value > best.value {
			best = result{value: value, action: action, found: true}
		}

		alpha = max(alpha, value)
		if alpha >= beta {
			break
		}
	}

	return best
}

func minValue(board Board, alpha, beta int) result {
	if IsTerminal(board) {
		return result{value: Utility(board)}
	}

	best := result{value: math.MaxInt}
	for _, action := range LegalActions(board) {
		child, _ := ApplyAction(board, action)

		value := maxValue(child, alpha, beta).value
		if value < best.value {
			best = result{value: value, action: action, found: true}
		}

		beta = min(beta, value)
		if alpha >= beta {
			break
		}
	}

	return best
}
