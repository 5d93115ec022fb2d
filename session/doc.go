// Package session ties the configuration surface (config), agent
// construction (agent), and the two executors (workflow, deliberation)
// together behind one fluent façade: build a Session from an
// EngineConfig, then either QuickExecute a one-line task or compose a
// WorkflowBuilder/DeliberationBuilder against a chosen subset of its
// agents.
package session
