package session

import (
	"github.com/google/uuid"

	"github.com/intervue/intervue-backend/internal/model"
)

// EventKind classifies outbound state events pushed to the client shell.
type EventKind string

const (
	// EventPhase signals a phase or sub-phase transition.
	EventPhase EventKind = "phase"
	// EventTick carries a countdown decrement.
	EventTick EventKind = "tick"
	// EventCaptureStart tells the client to start speech capture.
	EventCaptureStart EventKind = "capture_start"
	// EventCaptureStop tells the client to stop speech capture.
	EventCaptureStop EventKind = "capture_stop"
	// EventFragment reflects transcript progress back to the shell.
	EventFragment EventKind = "fragment"
	// EventWarning surfaces a non-fatal condition (proctoring warning,
	// speech error).
	EventWarning EventKind = "warning"
	// EventDevicesRelease tells the client to release camera and
	// microphone; emitted on every path that leaves the in-progress
	// phase.
	EventDevicesRelease EventKind = "devices_release"
	// EventTerminated signals the one-shot fatal end of the session.
	EventTerminated EventKind = "terminated"
)

// Event is one outbound notification. Every event carries a full
// snapshot; a consumer that misses intermediate events can always
// re-sync from the latest one.
type Event struct {
	Kind     EventKind               `json:"kind"`
	Snapshot model.InterviewSnapshot `json:"snapshot"`
}

// ViolationSink receives proctoring events for asynchronous persistence.
type ViolationSink interface {
	Record(sessionID uuid.UUID, sessionKind, reason, detail string)
}

// NopSink discards proctoring events. Used when no persistence queue is
// wired (tests, demo mode).
type NopSink struct{}

func (NopSink) Record(uuid.UUID, string, string, string) {}

// internal commands posted onto the controller's event loop

type command interface{ isCommand() }

type cmdBegin struct{ doc model.ResumeDocument }
type cmdGenerated struct{ questions []string }
type cmdTick struct{ epoch int }
type cmdFragment struct {
	text  string
	final bool
}
type cmdSpeechError struct{ code string }
type cmdFaceAbsent struct{ detail string }
type cmdProctorReady struct{}
type cmdProctorError struct{ message string }
type cmdClearWarning struct{ epoch int }
type cmdEvaluated struct{ results []model.EvaluatedResult }
type cmdSummarized struct{ summary model.PerformanceSummary }
type cmdEnd struct{ reason model.TerminationReason }
type cmdShutdown struct{}
type cmdBarrier struct{ done chan struct{} }

func (cmdBegin) isCommand()        {}
func (cmdGenerated) isCommand()    {}
func (cmdTick) isCommand()         {}
func (cmdFragment) isCommand()     {}
func (cmdSpeechError) isCommand()  {}
func (cmdFaceAbsent) isCommand()   {}
func (cmdProctorReady) isCommand() {}
func (cmdProctorError) isCommand() {}
func (cmdClearWarning) isCommand() {}
func (cmdEvaluated) isCommand()    {}
func (cmdSummarized) isCommand()   {}
func (cmdEnd) isCommand()          {}
func (cmdShutdown) isCommand()     {}
func (cmdBarrier) isCommand()      {}
