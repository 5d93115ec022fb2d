// Package contextwindow projects a growing deliberation transcript down to
// a bounded window for one recipient agent ahead of its next invocation.
//
// Five managers are provided: SlidingWindow (recency plus greedy backfill),
// RecursiveSummarization (incremental LLM compression of older rounds),
// Hierarchical (phase-segmented summaries packed under a token budget),
// ObservationMasking (per-message rewrite rules), and Hybrid, which
// auto-selects among the others by how far the transcript runs over
// budget.
package contextwindow
