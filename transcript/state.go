package transcript

import "time"

// State is the mutable record of one deliberation execution: an
// append-only transcript plus the counters and position history the
// termination and convergence layers read from. It is owned by exactly
// one executor; only that executor's control flow may mutate it.
type State struct {
	Task                   string
	CurrentRound           int
	TotalTokensUsed        int
	StartedAt              time.Time
	Messages               []Message
	Positions              map[string][]Message // agent id -> its messages, in order
	ConvergenceScore       *float64
	Converged              bool
	CurrentSpeaker         string
	ParticipatingAgentIDs  []string
}

// NewState returns an initialized State for task with the given
// participants.
func NewState(task string, participantIDs []string) *State {
	return &State{
		Task:                  task,
		StartedAt:             time.Now(),
		Positions:             make(map[string][]Message),
		ParticipatingAgentIDs: participantIDs,
	}
}

// Elapsed returns the time since the deliberation started.
func (s *State) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

// Append records m on the transcript and in its author's position
// history, and adds its token count to the running total.
func (s *State) Append(m Message) {
	s.Messages = append(s.Messages, m)
	s.Positions[m.AgentID] = append(s.Positions[m.AgentID], m)
	s.TotalTokensUsed += m.EstimatedTokens()
}

// MessagesInRound returns every message appended during round r, in
// transcript order.
func (s *State) MessagesInRound(r int) []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.Round == r {
			out = append(out, m)
		}
	}
	return out
}

// LastPosition returns agentID's most recent message, if any.
func (s *State) LastPosition(agentID string) (Message, bool) {
	history := s.Positions[agentID]
	if len(history) == 0 {
		return Message{}, false
	}
	return history[len(history)-1], true
}
