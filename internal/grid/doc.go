// Package grid owns the scalar field of a uniform rectangular mesh.
//
// A [Grid] holds NX × NY values indexed [i][j] with spacings
// dx = LX/(NX-1) and dy = LY/(NY-1). Dirichlet data is written onto the
// outer edges with [Grid.ApplyBoundary] before any relaxation starts, and
// every independent solver run works on its own [Grid.Clone].
//
// # Example
//
//	g, _ := grid.New(40, 30, 2.0, 1.5)
//	_ = g.ApplyBoundary([]grid.Range{grid.MiddleThird(grid.West, g)}, 1.0)
//	guess := g.Clone()
package grid
