// Package convergence scores how much a deliberation's participants have
// converged toward agreement, in [0,1]. TokenSimilarity computes this
// deterministically via Jaccard overlap of consecutive rounds' messages;
// LLM delegates the judgement to a provider.
package convergence
