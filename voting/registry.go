package voting

// Registry maps a declarative strategy tag to its Strategy implementation,
// mirroring the configuration surface's string-keyed strategy selection.
var Registry = map[string]Strategy{
	"majority":      Majority{},
	"weighted":      Weighted{},
	"ranked_choice": RankedChoice{},
	"consensus":     Consensus{},
	"aggregation":   Aggregation{},
	"expert_panel":  ExpertPanel{},
}

// Resolve looks up a strategy by tag.
func Resolve(tag string) (Strategy, bool) {
	s, ok := Registry[tag]
	return s, ok
}
