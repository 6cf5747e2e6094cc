// Package analysis summarizes ensembles of stochastic trajectories.
//
//   - [Summarize]: per-time mean and standard deviation of one component,
//     plus moments and quantiles of its final value
//   - [Compare]: distance between the ensemble mean and a reference curve
//   - [FinalCovariance]: covariance between components of the final states
//
// # Example
//
//	trajs, _ := sde.NewEnsemble(factory, y0, cfg, logger).Run(ctx)
//	summary, _ := analysis.Summarize(trajs, 0)
//	cmp := analysis.Compare(summary, func(t float64) float64 { return math.Exp(-t) })
package analysis
