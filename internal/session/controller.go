// Package session implements the timed interview session controller: a
// per-session event loop that drives each spoken question through the
// think/record cycle, captures one answer per question, applies the
// proctoring-violation policy, and pipelines the completed ledger
// through batched scoring and summarization.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/model"
	"github.com/intervue/intervue-backend/internal/transcript"
)

const (
	thinkSeconds     = 10
	recordSeconds    = 30
	warningSeconds   = 4
	commandQueueSize = 128
	eventQueueSize   = 64

	// emptyAnswerPlaceholder is substituted for an empty committed answer
	// when the ledger is handed to scoring.
	emptyAnswerPlaceholder = "(no answer was given)"

	proctorWarningMessage   = "Face not visible. Stay in front of the camera — the session ends on the next violation."
	proctorTerminationCause = "Session terminated: face absent from the camera frame twice."
)

// Interview owns one spoken session for its whole lifetime. All state
// mutation happens on a single event-loop goroutine; external inputs
// (WebSocket relays, timer ticks, gateway completions) are posted onto a
// buffered command channel, which gives the check-and-set around
// advancement the required atomicity even when two triggers fire
// back-to-back.
type Interview struct {
	id     uuid.UUID
	log    zerolog.Logger
	source gateway.QuestionSource
	scorer gateway.Scorer
	clock  Clock
	sink   ViolationSink

	ctx    context.Context
	cancel context.CancelFunc

	commands chan command
	events   chan Event
	done     chan struct{}

	closeOnce sync.Once

	mu sync.RWMutex
	// Everything below is guarded by mu. The event loop is the only
	// writer; Snapshot is the concurrent reader.
	phase         model.InterviewPhase
	subPhase      model.SubPhase
	countdown     int
	questions     []string
	ledger        []string
	buf           *transcript.Buffer
	index         int
	advanceLock   bool
	violations    int
	terminated    bool
	reason        model.TerminationReason
	warning       string
	speechError   string
	startError    string
	proctorReady  bool
	results       []model.EvaluatedResult
	summary       *model.PerformanceSummary
	startedAt     time.Time
	lastActivity  time.Time
	tickerEpoch   int
	warningEpoch  int
	activeTicker  Ticker
	tickerStop    chan struct{}

	onTerminate   func(model.TerminationReason)
	terminateOnce sync.Once
}

// NewInterview creates a controller in the upload phase and starts its
// event loop.
func NewInterview(source gateway.QuestionSource, scorer gateway.Scorer, clock Clock, sink ViolationSink, log zerolog.Logger) *Interview {
	if sink == nil {
		sink = NopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	id := uuid.New()
	c := &Interview{
		id:       id,
		log:      log.With().Str("component", "interview").Str("session_id", id.String()).Logger(),
		source:   source,
		scorer:   scorer,
		clock:    clock,
		sink:     sink,
		ctx:      ctx,
		cancel:   cancel,
		commands: make(chan command, commandQueueSize),
		events:   make(chan Event, eventQueueSize),
		done:     make(chan struct{}),
		phase:    model.PhaseUpload,
		subPhase: model.SubPhaseIdle,
	}
	c.startedAt = clock.Now()
	c.lastActivity = c.startedAt

	go c.run()
	return c
}

// ID returns the session identifier.
func (c *Interview) ID() uuid.UUID { return c.id }

// SetOnTerminate installs the external termination callback. It is
// invoked at most once, off the event loop, when the session is
// force-ended (proctoring violation, device failure, or user end).
func (c *Interview) SetOnTerminate(fn func(model.TerminationReason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTerminate = fn
}

// Events returns the outbound event stream. The channel is closed when
// the session shuts down. Slow consumers may miss intermediate events;
// every event carries a full snapshot to re-sync from.
func (c *Interview) Events() <-chan Event { return c.events }

// Done is closed once the event loop has exited.
func (c *Interview) Done() <-chan struct{} { return c.done }

// Begin hands the uploaded resume to question generation. Only valid in
// the upload phase; calls in any other phase are ignored.
func (c *Interview) Begin(doc model.ResumeDocument) { c.post(cmdBegin{doc: doc}) }

// Fragment relays one transcript fragment from the client's recognizer.
func (c *Interview) Fragment(text string, final bool) {
	c.post(cmdFragment{text: text, final: final})
}

// SpeechError relays a terminal recognition error code.
func (c *Interview) SpeechError(code string) { c.post(cmdSpeechError{code: code}) }

// FaceAbsent relays one face-absence event from the proctoring detector.
func (c *Interview) FaceAbsent(detail string) { c.post(cmdFaceAbsent{detail: detail}) }

// ProctorReady marks the client's camera pipeline as acquired.
func (c *Interview) ProctorReady() { c.post(cmdProctorReady{}) }

// ProctorError reports a fatal device/permission failure.
func (c *Interview) ProctorError(message string) { c.post(cmdProctorError{message: message}) }

// End terminates the session at the user's request and discards state.
func (c *Interview) End() { c.post(cmdEnd{reason: model.TerminationUser}) }

// Close shuts down the event loop. Idempotent.
func (c *Interview) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		select {
		case c.commands <- cmdShutdown{}:
		case <-c.done:
		}
	})
}

// Snapshot returns a copy of the externally visible state.
func (c *Interview) Snapshot() model.InterviewSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Expired reports whether the session has been inactive longer than ttl.
func (c *Interview) Expired(ttl time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clock.Now().Sub(c.lastActivity) > ttl
}

func (c *Interview) post(cmd command) {
	select {
	case c.commands <- cmd:
	case <-c.done:
	}
}

func (c *Interview) run() {
	defer close(c.done)
	defer close(c.events)
	for cmd := range c.commands {
		if _, ok := cmd.(cmdShutdown); ok {
			c.mu.Lock()
			c.stopTickerLocked()
			c.mu.Unlock()
			return
		}
		c.process(cmd)
	}
}

// process applies one command under the state lock, then delivers the
// resulting events and launches any async work outside it.
func (c *Interview) process(cmd command) {
	var pending []Event
	var spawned []func()

	c.mu.Lock()
	emit := func(kind EventKind) {
		pending = append(pending, Event{Kind: kind, Snapshot: c.snapshotLocked()})
	}
	spawn := func(f func()) { spawned = append(spawned, f) }

	c.lastActivity = c.clock.Now()
	c.handleLocked(cmd, emit, spawn)
	c.mu.Unlock()

	for _, ev := range pending {
		c.send(ev)
	}
	for _, f := range spawned {
		go f()
	}
}

func (c *Interview) handleLocked(cmd command, emit func(EventKind), spawn func(func())) {
	switch cmd := cmd.(type) {
	case cmdBarrier:
		close(cmd.done)

	case cmdBegin:
		if c.terminated || c.phase != model.PhaseUpload {
			return
		}
		c.phase = model.PhaseGenerating
		c.startError = ""
		emit(EventPhase)
		doc := cmd.doc
		spawn(func() {
			questions := c.source.GenerateQuestions(c.ctx, doc)
			c.post(cmdGenerated{questions: questions})
		})

	case cmdGenerated:
		if c.terminated || c.phase != model.PhaseGenerating {
			return
		}
		if gateway.IsGenerationFailure(cmd.questions) {
			// No partial state is retained: back to upload with a
			// surfaced message.
			c.phase = model.PhaseUpload
			c.startError = firstOrDefault(cmd.questions, "Question generation failed.")
			emit(EventPhase)
			return
		}
		c.questions = cmd.questions
		c.ledger = make([]string, len(cmd.questions))
		c.phase = model.PhaseInProgress
		c.enterQuestionLocked(0, emit)

	case cmdTick:
		if c.terminated || cmd.epoch != c.tickerEpoch || c.phase != model.PhaseInProgress {
			return
		}
		if c.countdown > 0 {
			c.countdown--
		}
		if c.countdown > 0 {
			emit(EventTick)
			return
		}
		switch c.subPhase {
		case model.SubPhaseThinking:
			c.subPhase = model.SubPhaseRecording
			c.countdown = recordSeconds
			c.startTickerLocked()
			emit(EventCaptureStart)
		case model.SubPhaseRecording:
			c.advanceLocked(emit, spawn)
		}

	case cmdFragment:
		if c.terminated || c.phase != model.PhaseInProgress || c.subPhase != model.SubPhaseRecording {
			return
		}
		if cmd.final {
			c.buf.Append(cmd.text)
		} else {
			c.buf.SetInterim(cmd.text)
		}
		emit(EventFragment)

	case cmdSpeechError:
		if c.terminated || c.phase != model.PhaseInProgress {
			return
		}
		// Non-fatal: surface the fixed message and advance with whatever
		// partial transcript was captured.
		c.speechError = transcript.Message(transcript.Normalize(cmd.code))
		emit(EventWarning)
		if c.subPhase == model.SubPhaseRecording {
			c.advanceLocked(emit, spawn)
		}

	case cmdFaceAbsent:
		if c.terminated || c.phase != model.PhaseInProgress {
			return
		}
		if c.violations == 0 {
			c.violations = 1
			c.warning = proctorWarningMessage
			c.warningEpoch++
			c.scheduleWarningClear(c.warningEpoch, spawn)
			c.sink.Record(c.id, "interview", "face_absent_warning", cmd.detail)
			emit(EventWarning)
			return
		}
		c.violations++
		c.sink.Record(c.id, "interview", "face_absent_termination", cmd.detail)
		c.terminateLocked(model.TerminationProctoring, proctorTerminationCause, emit)

	case cmdClearWarning:
		if c.terminated || cmd.epoch != c.warningEpoch || c.warning == "" {
			return
		}
		c.warning = ""
		emit(EventWarning)

	case cmdProctorReady:
		if c.terminated {
			return
		}
		c.proctorReady = true
		emit(EventPhase)

	case cmdProctorError:
		// Device/permission failure is fatal to the whole session,
		// regardless of phase.
		if c.terminated {
			return
		}
		c.startError = cmd.message
		c.terminateLocked(model.TerminationDevice, cmd.message, emit)

	case cmdEvaluated:
		if c.terminated || c.phase != model.PhaseEvaluating {
			return
		}
		c.results = cmd.results
		c.phase = model.PhaseSummarizing
		emit(EventPhase)
		results := cmd.results
		spawn(func() {
			summary := c.scorer.Summarize(c.ctx, results)
			c.post(cmdSummarized{summary: summary})
		})

	case cmdSummarized:
		if c.terminated || c.phase != model.PhaseSummarizing {
			return
		}
		summary := cmd.summary
		c.summary = &summary
		c.phase = model.PhaseResults
		emit(EventPhase)

	case cmdEnd:
		if c.terminated {
			return
		}
		c.terminateLocked(cmd.reason, "", emit)
	}
}

// enterQuestionLocked performs the per-question setup: thinking
// sub-phase, fresh transcript buffer, released advance lock, cleared
// speech error, new countdown task.
func (c *Interview) enterQuestionLocked(index int, emit func(EventKind)) {
	c.index = index
	c.subPhase = model.SubPhaseThinking
	c.countdown = thinkSeconds
	c.buf = transcript.NewBuffer()
	c.advanceLock = false
	c.speechError = ""
	c.startTickerLocked()
	emit(EventPhase)
}

// advanceLocked commits the current answer and moves to the next
// question or into evaluation. Idempotent under the advance lock: the
// countdown expiry and a transcription error can both request
// advancement for the same index, but only the first proceeds.
func (c *Interview) advanceLocked(emit func(EventKind), spawn func(func())) {
	if c.advanceLock || c.terminated {
		return
	}
	c.advanceLock = true
	c.stopTickerLocked()
	c.subPhase = model.SubPhaseIdle
	emit(EventCaptureStop)

	c.ledger[c.index] = c.buf.String()

	if c.index == len(c.questions)-1 {
		c.phase = model.PhaseEvaluating
		emit(EventDevicesRelease)
		emit(EventPhase)

		questions := append([]string(nil), c.questions...)
		answers := append([]string(nil), c.ledger...)
		spawn(func() { c.evaluate(questions, answers) })
		return
	}

	c.enterQuestionLocked(c.index+1, emit)
}

// evaluate issues one scoring call per question concurrently and joins
// on an all-settled barrier; results keep the original question order.
// Runs off the event loop; the outcome is posted back as a command.
func (c *Interview) evaluate(questions, answers []string) {
	results := make([]model.EvaluatedResult, len(questions))
	var wg sync.WaitGroup

	for i := range questions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answer := answers[i]
			if answer == "" {
				answer = emptyAnswerPlaceholder
			}
			eval := c.scorer.Score(c.ctx, questions[i], answer)
			results[i] = model.EvaluatedResult{
				Question: questions[i],
				Answer:   answer,
				Feedback: eval.Feedback,
				Score:    eval.Score,
			}
		}(i)
	}
	wg.Wait()

	c.post(cmdEvaluated{results: results})
}

// terminateLocked is the one-shot fatal exit: stop the countdown, tell
// the client to stop capture and release devices, and flag the state so
// every later command becomes a no-op.
func (c *Interview) terminateLocked(reason model.TerminationReason, message string, emit func(EventKind)) {
	c.terminated = true
	c.reason = reason
	if message != "" {
		c.warning = message
	}
	c.stopTickerLocked()
	c.subPhase = model.SubPhaseIdle
	emit(EventCaptureStop)
	emit(EventDevicesRelease)
	emit(EventTerminated)
	c.log.Info().Str("reason", string(reason)).Msg("Session terminated")

	if cb := c.onTerminate; cb != nil {
		c.terminateOnce.Do(func() { go cb(reason) })
	}
}

func (c *Interview) startTickerLocked() {
	c.stopTickerLocked()
	c.tickerEpoch++
	epoch := c.tickerEpoch
	t := c.clock.NewTicker(time.Second)
	stop := make(chan struct{})
	c.activeTicker = t
	c.tickerStop = stop
	go func() {
		for {
			select {
			case <-t.C():
				c.post(cmdTick{epoch: epoch})
			case <-stop:
				return
			case <-c.done:
				return
			}
		}
	}()
}

func (c *Interview) stopTickerLocked() {
	if c.activeTicker != nil {
		c.activeTicker.Stop()
		c.activeTicker = nil
	}
	if c.tickerStop != nil {
		close(c.tickerStop)
		c.tickerStop = nil
	}
}

// scheduleWarningClear expires the proctoring warning after the fixed
// display window.
func (c *Interview) scheduleWarningClear(epoch int, spawn func(func())) {
	t := c.clock.NewTicker(warningSeconds * time.Second)
	spawn(func() {
		defer t.Stop()
		select {
		case <-t.C():
			c.post(cmdClearWarning{epoch: epoch})
		case <-c.done:
		}
	})
}

func (c *Interview) send(ev Event) {
	select {
	case c.events <- ev:
	default:
		// Slow consumer: drop, the next event carries a full snapshot.
	}
}

func (c *Interview) snapshotLocked() model.InterviewSnapshot {
	snap := model.InterviewSnapshot{
		ID:            c.id,
		Phase:         c.phase,
		SubPhase:      c.subPhase,
		Countdown:     c.countdown,
		QuestionIndex: c.index,
		QuestionCount: len(c.questions),
		Warning:       c.warning,
		SpeechError:   c.speechError,
		StartError:    c.startError,
		Violations:    c.violations,
		ProctorReady:  c.proctorReady,
		Terminated:    c.terminated,
		Reason:        c.reason,
		Summary:       c.summary,
		StartedAt:     c.startedAt,
	}
	if c.phase == model.PhaseInProgress && c.index < len(c.questions) {
		snap.Question = c.questions[c.index]
	}
	if c.buf != nil {
		snap.Interim = c.buf.Interim()
	}
	if len(c.ledger) > 0 {
		snap.Answers = append([]string(nil), c.ledger...)
	}
	if len(c.results) > 0 {
		snap.Results = append([]model.EvaluatedResult(nil), c.results...)
	}
	return snap
}

func firstOrDefault(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}
