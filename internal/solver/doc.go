// Package solver relaxes a discrete Poisson problem to a fixed point.
//
// The update rule is a tagged [Mode]: Jacobi, Gauss-Seidel, or
// Gauss-Seidel with successive over-relaxation by a factor beta. One
// generic driver runs sweeps until the mean change between iterates drops
// below the tolerance or the iteration budget runs out:
//
//	Running → Converged
//	Running → MaxIterationsReached
//
// Hitting the budget is not an error. The last iterate is returned with
// [StatusMaxIterations] and a warning is logged.
//
// # Concurrency
//
// Jacobi sweeps read one buffer and write another, so rows are split across
// Config.Workers goroutines. Gauss-Seidel and SOR sweeps update the field in
// place in a fixed order (j outer, i inner) and always run on the calling
// goroutine. A [Solver] holds no per-run state and may be shared.
package solver
