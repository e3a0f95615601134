// Package viz renders solver output for the terminal.
//
//   - [SweepTable] and [CompareTable]: styled result tables
//   - [IterationPlot] and [ResidualPlot]: asciigraph line plots
//   - [Heatmap]: shaded field view with iso-level bands
//
// Everything returns strings; callers decide where to print.
package viz
