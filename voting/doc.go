// Package voting reconciles a set of agent responses to the same task into
// one winning answer plus a consensus score in [0,1].
//
// Six strategies are provided: Majority and Weighted bucket by normalized
// response text; RankedChoice and Consensus and ExpertPanel defer to an
// optional arbiter capability, falling back to a documented default when
// none is configured; Aggregation always produces an answer, synthesized
// by an arbiter when present or concatenated otherwise.
package voting
