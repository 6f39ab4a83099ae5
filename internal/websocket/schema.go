package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionTranscript relays one speech fragment from the client's
	// recognizer.
	ActionTranscript Action = "transcript"
	// ActionSTTError relays a terminal recognition error code.
	ActionSTTError Action = "stt_error"
	// ActionFaceAbsent relays a face-presence violation from the
	// client's detector.
	ActionFaceAbsent Action = "face_absent"
	// ActionProctorReady signals successful camera acquisition.
	ActionProctorReady Action = "proctor_ready"
	// ActionProctorError signals a fatal device/permission failure.
	ActionProctorError Action = "proctor_error"
	ActionPing         Action = "ping"
	ActionEnd          Action = "end"
)

// RequestPayload is the single inbound message shape; unused fields stay
// empty depending on the action.
type RequestPayload struct {
	Action Action `json:"action"`
	Text   string `json:"text,omitempty"`
	Final  bool   `json:"final,omitempty"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventPong    Event = "pong"
	EventSession Event = "session"
)

// SessionEvent wraps a controller state event for the wire. Kind mirrors
// the controller's event kinds; Snapshot is the full session view.
type SessionEvent struct {
	Event    Event       `json:"event"`
	Kind     string      `json:"kind"`
	Snapshot interface{} `json:"snapshot"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
