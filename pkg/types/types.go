// Package types provides shared types used across forge-deploy packages.
package types

import "time"

// State is the monitoring session state.
// A session starts in StateRunning and ends in exactly one of the three
// terminal states.
type State string

const (
	// StateRunning means the deployment is still in progress and polling continues.
	StateRunning State = "RUNNING"

	// StateSucceeded means the platform reported the deployment finished.
	StateSucceeded State = "SUCCEEDED"

	// StateFailed means the platform reported a terminal failure
	// (failed, failed-build, or cancelled).
	StateFailed State = "FAILED"

	// StateTimedOut means the deployment did not reach a terminal status
	// before the session ceiling elapsed.
	StateTimedOut State = "TIMED_OUT"
)

// Terminal reports whether the state ends a session.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateTimedOut
}

// Result contains the outcome of one monitoring session.
// This is returned by the monitor after the session resolves.
type Result struct {
	// DeploymentID is the identifier returned by the trigger call
	DeploymentID string

	// State the session resolved to (SUCCEEDED, FAILED, or TIMED_OUT)
	State State

	// LastStatus is the last status value reported by the platform
	// (e.g., "finished", "failed-build", or the last in-progress value
	// observed before a timeout)
	LastStatus string

	// Elapsed is the wall-clock duration from trigger to resolution
	Elapsed time.Duration
}
