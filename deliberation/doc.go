// Package deliberation runs the multi-round state machine that composes
// agents, a round mode, a context manager, a termination strategy, a
// convergence calculator, and a voting strategy into one conversation: at
// each step it checks termination before advancing the round, runs one
// round in the configured mode, scores convergence, and repeats until
// termination fires, then synthesizes a typed result from the last
// round's responses.
package deliberation
