// Package workflow runs the single-shot fan-out/voting pipeline: invoke a
// set of agents (in parallel under a linked deadline, or sequentially),
// reconcile their responses with a voting strategy, optionally retry with
// Consensus when the result falls short of a required threshold, and
// extract a typed value from the winner.
package workflow
