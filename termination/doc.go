// Package termination decides, per deliberation round, whether execution
// should stop. Atomic strategies check bounds (rounds, tokens, time),
// convergence, a custom predicate, or defer to a judge agent or an entire
// judgement workflow. Composite combines children under Any (first fire
// short-circuits, in insertion order) or All (every child must fire)
// semantics.
package termination
