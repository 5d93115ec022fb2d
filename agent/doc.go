// Copyright 2024 Conclave Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package agent adapts a single LLM capability to a personality-shaped
participant in a workflow or deliberation.

# Overview

An Agent pairs a Personality (display data, a seed system prompt, and
numeric creativity/precision dials) with one llm.Provider and an optional
ToolSet. It exposes three operations consumed by the voting and
deliberation layers:

  - Process: free-form completion, running a bounded tool-calling loop
    when the agent has registered tools.
  - ProcessStructured: Process plus a best-effort JSON extraction of the
    response into a caller-supplied schema.
  - Vote: asks the agent to pick the best among a set of other agents'
    responses to the same task.

Any provider failure is swallowed into a response whose text begins with
"Error: " rather than propagated — callers always get exactly one
AgentResponse per agent per invocation, so one flaky provider never
aborts a round.
*/
package agent
