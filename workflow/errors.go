package workflow

import "errors"

// ErrNoAgents is raised synchronously at Execute entry when Options has no
// agents configured — a configuration error, never silently converted
// into a Result failure.
var ErrNoAgents = errors.New("workflow: no agents configured")
