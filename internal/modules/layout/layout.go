// Package layout places dashboard widgets on a fixed-column grid.
package layout

// Placement is a positioned widget produced by Engine.Place
type Placement struct {
	Type string
	X    int
	Y    int
	Size
}

// Engine packs widgets left to right into rows.
// The zero value uses DefaultColumns, DefaultSizes and FallbackSize.
type Engine struct {
	Sizes    map[string]Size
	Fallback Size
	Columns  int
}

// NewEngine returns an engine with the canonical size table and the given column count.
// columns <= 0 selects DefaultColumns.
func NewEngine(columns int) *Engine {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Engine{Columns: columns, Sizes: DefaultSizes, Fallback: FallbackSize}
}

// SizeOf returns the size used for widgetType
func (e *Engine) SizeOf(widgetType string) Size {
	sizes := e.Sizes
	if sizes == nil {
		sizes = DefaultSizes
	}
	if s, ok := sizes[widgetType]; ok {
		return s
	}
	if e.Fallback.W > 0 && e.Fallback.H > 0 {
		return e.Fallback
	}
	return FallbackSize
}

// Place assigns coordinates to each widget type in order.
//
// A widget goes at the current cursor if it fits the row; otherwise the cursor
// wraps to x=0 below the tallest widget of the current row. A widget wider than
// the grid is placed at x=0 and overflows; it is not clamped.
func (e *Engine) Place(types []string) []Placement {
	columns := e.Columns
	if columns <= 0 {
		columns = DefaultColumns
	}

	placements := make([]Placement, 0, len(types))
	x, y, rowHeight := 0, 0, 0

	for _, t := range types {
		size := e.SizeOf(t)

		if x+size.W > columns {
			x = 0
			y += rowHeight
			rowHeight = 0
		}

		placements = append(placements, Placement{Type: t, X: x, Y: y, Size: size})

		x += size.W
		if size.H > rowHeight {
			rowHeight = size.H
		}
	}

	return placements
}
