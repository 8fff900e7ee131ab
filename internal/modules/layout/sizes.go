package layout

// Size is a widget's default grid span and its resize floor
type Size struct {
	W    int
	H    int
	MinW int
	MinH int
}

// DefaultColumns is the dashboard grid width
const DefaultColumns = 12

// FallbackSize applies to widget types missing from the size table
var FallbackSize = Size{W: 4, H: 3}

// DefaultSizes is the canonical per-type size table
var DefaultSizes = map[string]Size{
	"sentiment": {W: 3, H: 3, MinW: 2, MinH: 2},
	"holdings":  {W: 6, H: 4, MinW: 4, MinH: 3},
	"news":      {W: 4, H: 4, MinW: 3, MinH: 3},
	"reddit":    {W: 4, H: 4, MinW: 3, MinH: 3},
	"chart":     {W: 6, H: 4, MinW: 4, MinH: 3},
	"trades":    {W: 5, H: 4, MinW: 4, MinH: 3},
	"sectors":   {W: 3, H: 3, MinW: 2, MinH: 2},
	"watchlist": {W: 3, H: 4, MinW: 2, MinH: 3},
}
