package session

// Outcome is the result of evaluating a board.
type Outcome int

const (
	// OutcomeOpen means the game continues.
	OutcomeOpen Outcome = iota
	// OutcomeWin means the player returned by Evaluate has three in a row.
	OutcomeWin
	// OutcomeDraw means the board is full with no winner.
	OutcomeDraw
)

// Evaluate checks all 3 rows, then all 3 columns, then both diagonals for
// three equal non-empty marks. If no line is complete it declares a draw
// only when every cell is occupied; otherwise the game is still open.
// winner is the player index and is only meaningful for OutcomeWin.
func Evaluate(b [3][3]Cell) (outcome Outcome, winner int) {
	for i := 0; i < 3; i++ {
		if b[i][0] != CellEmpty && b[i][0] == b[i][1] && b[i][1] == b[i][2] {
			return OutcomeWin, int(b[i][0])
		}
	}
	for i := 0; i < 3; i++ {
		if b[0][i] != CellEmpty && b[0][i] == b[1][i] && b[1][i] == b[2][i] {
			return OutcomeWin, int(b[0][i])
		}
	}
	if b[0][0] != CellEmpty && b[0][0] == b[1][1] && b[1][1] == b[2][2] {
		return OutcomeWin, int(b[0][0])
	}
	if b[0][2] != CellEmpty && b[0][2] == b[1][1] && b[1][1] == b[2][0] {
		return OutcomeWin, int(b[0][2])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if b[i][j] == CellEmpty {
				return OutcomeOpen, 0
			}
		}
	}
	return OutcomeDraw, 0
}

// emptyBoard returns a board with every cell unoccupied.
func emptyBoard() [3][3]Cell {
	var b [3][3]Cell
	for i := range b {
		for j := range b[i] {
			b[i][j] = CellEmpty
		}
	}
	return b
}
