package agent

import "fmt"

// CommunicationStyle tags how a Personality phrases its responses.
type CommunicationStyle string

const (
	StyleConcise       CommunicationStyle = "concise"
	StyleDetailed      CommunicationStyle = "detailed"
	StyleSocratic      CommunicationStyle = "socratic"
	StyleDiplomatic    CommunicationStyle = "diplomatic"
	StyleDirect        CommunicationStyle = "direct"
)

// styleSuffixes are appended to the system prompt to nudge phrasing,
// mirroring the distinct suffix each communication style contributes.
var styleSuffixes = map[CommunicationStyle]string{
	StyleConcise:    "Respond concisely, favoring short, direct sentences.",
	StyleDetailed:   "Respond thoroughly, showing your reasoning and covering edge cases.",
	StyleSocratic:   "Respond by probing assumptions and posing clarifying questions before concluding.",
	StyleDiplomatic: "Respond in a way that acknowledges other viewpoints and seeks common ground.",
	StyleDirect:     "Respond plainly and state your conclusion first.",
}

// Personality is a declarative bundle of display data, a seed system
// prompt, and numeric dials that shape how an Agent invokes its provider.
type Personality struct {
	Name               string
	Description        string
	SystemPrompt       string
	Traits             map[string]string
	Creativity         float32 // clamped to [0,1]; maps to default temperature
	Precision          float32 // clamped to [0,1]
	Expertise          string  // optional domain tag
	CommunicationStyle CommunicationStyle
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PersonalityBuilder constructs a Personality, clamping numeric fields to
// their valid range so callers never hand an Agent an out-of-bounds dial.
type PersonalityBuilder struct {
	p Personality
}

// NewPersonalityBuilder starts a PersonalityBuilder for the given display name.
func NewPersonalityBuilder(name string) *PersonalityBuilder {
	return &PersonalityBuilder{p: Personality{
		Name:               name,
		Creativity:         0.5,
		Precision:          0.5,
		CommunicationStyle: StyleDirect,
		Traits:             make(map[string]string),
	}}
}

func (b *PersonalityBuilder) WithDescription(d string) *PersonalityBuilder {
	b.p.Description = d
	return b
}

func (b *PersonalityBuilder) WithSystemPrompt(s string) *PersonalityBuilder {
	b.p.SystemPrompt = s
	return b
}

func (b *PersonalityBuilder) WithCreativity(c float32) *PersonalityBuilder {
	b.p.Creativity = clamp01(c)
	return b
}

func (b *PersonalityBuilder) WithPrecision(p float32) *PersonalityBuilder {
	b.p.Precision = clamp01(p)
	return b
}

func (b *PersonalityBuilder) WithExpertise(domain string) *PersonalityBuilder {
	b.p.Expertise = domain
	return b
}

func (b *PersonalityBuilder) WithCommunicationStyle(s CommunicationStyle) *PersonalityBuilder {
	b.p.CommunicationStyle = s
	return b
}

func (b *PersonalityBuilder) WithTrait(key, value string) *PersonalityBuilder {
	b.p.Traits[key] = value
	return b
}

// Build returns the finished Personality. Errors only when Name is blank.
func (b *PersonalityBuilder) Build() (Personality, error) {
	if b.p.Name == "" {
		return Personality{}, ErrEmptyName
	}
	return b.p, nil
}

// ResolveSystemPrompt builds the final system message text: the seed
// system prompt, augmented with expertise, free-form traits, and a
// style-specific suffix.
func (p Personality) ResolveSystemPrompt() string {
	prompt := p.SystemPrompt
	if p.Expertise != "" {
		prompt += fmt.Sprintf("\n\nYou have deep expertise in %s.", p.Expertise)
	}
	if len(p.Traits) > 0 {
		prompt += "\n\nYour notable traits:"
		for k, v := range p.Traits {
			prompt += fmt.Sprintf("\n- %s: %s", k, v)
		}
	}
	if suffix, ok := styleSuffixes[p.CommunicationStyle]; ok {
		prompt += "\n\n" + suffix
	}
	return prompt
}

// Preset personalities, analogous to the distilled config surface's
// preset keys: analyst, creative, critic, diplomat, expert:<domain>.

// AnalystPersonality returns a precision-weighted, detail-oriented preset.
func AnalystPersonality() Personality {
	p, _ := NewPersonalityBuilder("Analyst").
		WithDescription("Evaluates claims rigorously and favors evidence over intuition.").
		WithSystemPrompt("You are a careful analyst. You break problems into parts, check assumptions, and cite concrete evidence.").
		WithCreativity(0.2).
		WithPrecision(0.9).
		WithCommunicationStyle(StyleDetailed).
		Build()
	return p
}

// CreativePersonality returns a creativity-weighted, exploratory preset.
func CreativePersonality() Personality {
	p, _ := NewPersonalityBuilder("Creative").
		WithDescription("Generates novel angles and is comfortable with speculation.").
		WithSystemPrompt("You are an imaginative thinker. You explore unconventional angles and are unafraid to propose bold ideas.").
		WithCreativity(0.9).
		WithPrecision(0.4).
		WithCommunicationStyle(StyleDetailed).
		Build()
	return p
}

// CriticPersonality returns a skeptical, gap-finding preset.
func CriticPersonality() Personality {
	p, _ := NewPersonalityBuilder("Critic").
		WithDescription("Looks for weaknesses, gaps, and unstated assumptions.").
		WithSystemPrompt("You are a rigorous critic. You look for flaws, missing evidence, and weak reasoning in any proposal.").
		WithCreativity(0.3).
		WithPrecision(0.8).
		WithCommunicationStyle(StyleDirect).
		Build()
	return p
}

// DiplomatPersonality returns a consensus-seeking preset.
func DiplomatPersonality() Personality {
	p, _ := NewPersonalityBuilder("Diplomat").
		WithDescription("Seeks common ground and synthesizes competing views.").
		WithSystemPrompt("You are a diplomat. You look for the valid core of each competing view and propose syntheses that most participants could accept.").
		WithCreativity(0.5).
		WithPrecision(0.6).
		WithCommunicationStyle(StyleDiplomatic).
		Build()
	return p
}

// ExpertPersonality returns a domain-tagged variant of AnalystPersonality.
func ExpertPersonality(domain string) Personality {
	p, _ := NewPersonalityBuilder(fmt.Sprintf("Expert(%s)", domain)).
		WithDescription(fmt.Sprintf("Brings domain expertise in %s to bear on the task.", domain)).
		WithSystemPrompt(fmt.Sprintf("You are a domain expert in %s. Ground your responses in established practice for that field.", domain)).
		WithCreativity(0.3).
		WithPrecision(0.8).
		WithExpertise(domain).
		WithCommunicationStyle(StyleDetailed).
		Build()
	return p
}

// ResolvePreset maps a declarative preset key (optionally "expert:<domain>")
// to a concrete Personality. Returns false for unknown keys.
func ResolvePreset(key string) (Personality, bool) {
	if len(key) > 7 && key[:7] == "expert:" {
		return ExpertPersonality(key[7:]), true
	}
	switch key {
	case "analyst":
		return AnalystPersonality(), true
	case "creative":
		return CreativePersonality(), true
	case "critic":
		return CriticPersonality(), true
	case "diplomat":
		return DiplomatPersonality(), true
	default:
		return Personality{}, false
	}
}
