// Package search finds the value of a scalar parameter at which a black-box
// simulation reaches a target result, typically the boron concentration that
// makes a reactor model exactly critical (k-effective = 1).
//
// Each evaluation of the black box may be an expensive external simulation, so
// evaluations are issued strictly one at a time and every one of them is kept
// in the search history. Bisection is the default strategy; secant and Brent's
// method share the same contract and error taxonomy:
//
//   - BracketError: the initial bracket has no sign change around the target.
//   - EvaluationError: the black box failed or produced a non-finite result.
//   - ConvergenceError: the iteration cap was reached without convergence.
package search
