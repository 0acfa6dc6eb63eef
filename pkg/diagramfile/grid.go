package diagramfile

import (
	"fmt"
	"math"
)

// Canvas grid constants. Columns are labelled A, B, …, Z, AA, AB, … and
// rows are numbered from 1, spreadsheet style.
const (
	CellSize    = 50.0
	DefaultCols = 78
	DefaultRows = 130
)

// ColumnLabel returns the spreadsheet-style label for a 1-based column.
func ColumnLabel(col int) string {
	label := ""
	for col > 0 {
		col--
		label = string(rune('A'+col%26)) + label
		col /= 26
	}
	return label
}

// CellName returns the grid cell name for 1-based column and row, e.g. "A1".
func CellName(col, row int) string {
	return fmt.Sprintf("%s%d", ColumnLabel(col), row)
}

// Snap rounds a coordinate to the nearest grid line.
func Snap(v float64) float64 {
	return math.Round(v/CellSize) * CellSize
}

// ExpandScene grows a cols×rows scene so that a block extending to
// (maxX, maxY) fits with headroom. The scene only ever grows; columns get
// 10 cells of headroom and rows 50, so vertical program flow has room to
// continue downward.
func ExpandScene(cols, rows int, maxX, maxY float64) (int, int) {
	reqCols := int(maxX/CellSize) + 1
	if reqCols < cols {
		reqCols = cols
	} else {
		reqCols += 10
	}
	reqRows := int(maxY/CellSize) + 1
	if reqRows < rows {
		reqRows = rows
	} else {
		reqRows += 50
	}
	return reqCols, reqRows
}

// SceneRect returns the world-space size of a cols×rows scene, including
// the label gutter row/column.
func SceneRect(cols, rows int) (w, h float64) {
	return float64(cols+1) * CellSize, float64(rows+1) * CellSize
}
