package grid

import (
	"fmt"
	"strings"
)

// Edge names one side of the mesh frame.
type Edge int

const (
	West  Edge = iota // i = 0
	East              // i = NX-1
	South             // j = 0
	North             // j = NY-1
)

var edgeNames = [...]string{"west", "east", "south", "north"}

func (e Edge) String() string {
	if e < West || e > North {
		return fmt.Sprintf("edge(%d)", int(e))
	}
	return edgeNames[e]
}

func ParseEdge(s string) (Edge, error) {
	for i, name := range edgeNames {
		if strings.EqualFold(s, name) {
			return Edge(i), nil
		}
	}
	return 0, fmt.Errorf("unknown edge: %q (want west, east, south or north)", s)
}

// Range is a half-open index span [From, To) along one edge. West and East
// spans index j; South and North spans index i.
type Range struct {
	Edge     Edge
	From, To int
}

// Full covers the whole of edge e.
func Full(e Edge, g *Grid) Range {
	return Range{Edge: e, From: 0, To: g.edgeLen(e)}
}

// Strip converts fractional positions along edge e into an index span,
// truncating toward zero.
func Strip(e Edge, g *Grid, from, to float64) Range {
	n := g.edgeLen(e)
	return Range{Edge: e, From: int(from * float64(n)), To: int(to * float64(n))}
}

// MiddleThird is the strip [n/3, 2n/3) of edge e.
func MiddleThird(e Edge, g *Grid) Range {
	n := g.edgeLen(e)
	return Range{Edge: e, From: n / 3, To: 2 * n / 3}
}

func (g *Grid) edgeLen(e Edge) int {
	if e == West || e == East {
		return g.NY
	}
	return g.NX
}

func (g *Grid) validRange(r Range) error {
	if r.Edge < West || r.Edge > North {
		return fmt.Errorf("%w: %s", ErrOutsideBoundary, r.Edge)
	}
	if r.From < 0 || r.To > g.edgeLen(r.Edge) || r.From >= r.To {
		return fmt.Errorf("%w: %s [%d,%d) on length %d", ErrOutsideBoundary, r.Edge, r.From, r.To, g.edgeLen(r.Edge))
	}
	return nil
}

// ApplyBoundary writes value into every cell of ranges. All ranges are
// checked before anything is written.
func (g *Grid) ApplyBoundary(ranges []Range, value float64) error {
	for _, r := range ranges {
		if err := g.validRange(r); err != nil {
			return err
		}
	}
	for _, r := range ranges {
		for k := r.From; k < r.To; k++ {
			switch r.Edge {
			case West:
				g.Set(0, k, value)
			case East:
				g.Set(g.NX-1, k, value)
			case South:
				g.Set(k, 0, value)
			case North:
				g.Set(k, g.NY-1, value)
			}
		}
	}
	return nil
}
