// Package core wires the clause parsers and compilers into a single Planner
// and adds the observability layer around plan compilation: structured
// logging and typed compile events on an event bus.
package core

import "time"

// PlanEventType identifies the lifecycle stage a plan event reports.
type PlanEventType string

// Plan compilation lifecycle events.
const (
	PlanCompileStart   PlanEventType = "plan.compile.start"
	PlanCompileSuccess PlanEventType = "plan.compile.success"
	PlanCompileFailed  PlanEventType = "plan.compile.failed"
)

// PlanEvent is published on the planner's event bus for each stage of a
// compilation. Error is set only on failure events; Duration only on
// terminal events.
type PlanEvent struct {
	Type      PlanEventType  `json:"type"`
	PlanID    string         `json:"planId"`
	Model     string         `json:"model"`
	Error     *string        `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  *time.Duration `json:"duration,omitempty"`
}

func createEvent(eventType PlanEventType, planID, model string, errMsg *string, start time.Time) PlanEvent {
	event := PlanEvent{
		Type:      eventType,
		PlanID:    planID,
		Model:     model,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
	if eventType != PlanCompileStart {
		elapsed := time.Since(start)
		event.Duration = &elapsed
	}
	return event
}
