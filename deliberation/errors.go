package deliberation

import "errors"

// ErrNoAgents is raised synchronously at Execute entry when Options has no
// agents configured — a configuration error, never silently converted.
var ErrNoAgents = errors.New("deliberation: no agents configured")

// ErrNoTermination is raised when Options has no termination strategy: a
// deliberation with nothing to stop it is a configuration mistake, not a
// runtime failure.
var ErrNoTermination = errors.New("deliberation: no termination strategy configured")
