package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-backend/internal/gateway"
	"github.com/intervue/intervue-backend/internal/model"
)

// ─── Test doubles ───────────────────────────────────────────────────

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time, 64)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeClock) lastTicker() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) fire() { t.c <- time.Time{} }

type stubSource struct {
	mu    sync.Mutex
	sets  [][]string
	calls int
}

func (s *stubSource) GenerateQuestions(context.Context, model.ResumeDocument) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[0]
	if len(s.sets) > 1 {
		s.sets = s.sets[1:]
	}
	s.calls++
	return set
}

func (s *stubSource) GenerateQuiz(context.Context, string) ([]model.QuizQuestion, error) {
	return nil, nil
}

type stubScorer struct {
	scoreCalls int32
}

func (s *stubScorer) Score(_ context.Context, _, answer string) gateway.Evaluation {
	atomic.AddInt32(&s.scoreCalls, 1)
	return gateway.Evaluation{Feedback: "feedback for: " + answer, Score: 4}
}

func (s *stubScorer) Summarize(context.Context, []model.EvaluatedResult) model.PerformanceSummary {
	return model.PerformanceSummary{Strengths: "clear delivery", AreasForImprovement: "more depth"}
}

func (s *stubScorer) SummarizeQuiz(context.Context, string, int, int) model.PerformanceSummary {
	return model.PerformanceSummary{Strengths: "n/a", AreasForImprovement: "n/a"}
}

type recordingSink struct {
	mu      sync.Mutex
	reasons []string
}

func (s *recordingSink) Record(_ uuid.UUID, _, reason, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasons = append(s.reasons, reason)
}

func (s *recordingSink) Reasons() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reasons...)
}

// ─── Helpers ────────────────────────────────────────────────────────

func newTestInterview(t *testing.T, questions []string) (*Interview, *fakeClock, *stubScorer, *recordingSink) {
	t.Helper()
	clock := newFakeClock()
	scorer := &stubScorer{}
	sink := &recordingSink{}
	source := &stubSource{sets: [][]string{questions}}
	c := NewInterview(source, scorer, clock, sink, zerolog.Nop())
	t.Cleanup(c.Close)
	return c, clock, scorer, sink
}

// sync waits until every previously posted command has been processed.
func syncLoop(t *testing.T, c *Interview) {
	t.Helper()
	done := make(chan struct{})
	c.post(cmdBarrier{done: done})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop stalled")
	}
}

func currentEpoch(c *Interview) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickerEpoch
}

// tickSeconds posts n countdown ticks for the current epoch and waits
// for them to be processed. Ticks that outlive a sub-phase transition
// are discarded by the epoch guard, exactly like stale real-timer fires.
func tickSeconds(t *testing.T, c *Interview, n int) {
	t.Helper()
	epoch := currentEpoch(c)
	for i := 0; i < n; i++ {
		c.post(cmdTick{epoch: epoch})
	}
	syncLoop(t, c)
}

func waitPhase(t *testing.T, c *Interview, phase model.InterviewPhase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Snapshot().Phase == phase
	}, 2*time.Second, 5*time.Millisecond, "phase never became %s", phase)
	syncLoop(t, c)
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestInterviewFullCycle(t *testing.T) {
	c, _, scorer, _ := newTestInterview(t, []string{"Tell me about your last project.", "What would you improve?"})

	snap := c.Snapshot()
	require.Equal(t, model.PhaseUpload, snap.Phase)

	c.Begin(model.ResumeDocument{MimeType: "text/plain", Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)

	snap = c.Snapshot()
	assert.Equal(t, model.SubPhaseThinking, snap.SubPhase)
	assert.Equal(t, thinkSeconds, snap.Countdown)
	assert.Equal(t, 0, snap.QuestionIndex)
	assert.Equal(t, 2, snap.QuestionCount)
	assert.Equal(t, "Tell me about your last project.", snap.Question)

	// Fragments during the think window are ignored.
	c.Fragment("too early", true)
	syncLoop(t, c)

	tickSeconds(t, c, thinkSeconds)
	snap = c.Snapshot()
	assert.Equal(t, model.SubPhaseRecording, snap.SubPhase)
	assert.Equal(t, recordSeconds, snap.Countdown)

	c.Fragment("I built", true)
	c.Fragment("", true) // blank finals are dropped
	c.Fragment("a cache layer", true)
	c.Fragment("and then", false) // interim, display only
	syncLoop(t, c)
	assert.Equal(t, "and then", c.Snapshot().Interim)

	tickSeconds(t, c, recordSeconds)
	snap = c.Snapshot()
	assert.Equal(t, 1, snap.QuestionIndex)
	assert.Equal(t, model.SubPhaseThinking, snap.SubPhase)
	assert.Equal(t, "What would you improve?", snap.Question)
	assert.Empty(t, snap.Interim, "interim must reset with the new question")
	require.Len(t, snap.Answers, 2)
	assert.Equal(t, "I built a cache layer", snap.Answers[0], "interim text must not leak into the committed answer")

	// Second question: stay silent the whole way through.
	tickSeconds(t, c, thinkSeconds)
	tickSeconds(t, c, recordSeconds)

	waitPhase(t, c, model.PhaseResults)
	snap = c.Snapshot()
	require.Len(t, snap.Results, 2)
	assert.Equal(t, "I built a cache layer", snap.Results[0].Answer)
	assert.Equal(t, emptyAnswerPlaceholder, snap.Results[1].Answer)
	assert.Equal(t, 4, snap.Results[0].Score)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, "clear delivery", snap.Summary.Strengths)
	assert.Equal(t, int32(2), atomic.LoadInt32(&scorer.scoreCalls))
}

func TestInterviewAdvanceIsIdempotent(t *testing.T) {
	c, _, scorer, _ := newTestInterview(t, []string{"Only question."})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)
	tickSeconds(t, c, thinkSeconds)

	c.Fragment("short answer", true)
	syncLoop(t, c)

	// A countdown expiry, a speech error, and a stale tick all request
	// advancement for the same question back-to-back. Exactly one wins.
	epoch := currentEpoch(c)
	c.post(cmdTick{epoch: epoch})
	for i := 0; i < recordSeconds; i++ {
		c.post(cmdTick{epoch: epoch})
	}
	c.post(cmdSpeechError{code: "no-speech"})
	c.post(cmdTick{epoch: epoch})
	syncLoop(t, c)

	waitPhase(t, c, model.PhaseResults)
	snap := c.Snapshot()
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "short answer", snap.Results[0].Answer)
	assert.Equal(t, int32(1), atomic.LoadInt32(&scorer.scoreCalls))
}

func TestInterviewSpeechErrorAdvancesWithPartialTranscript(t *testing.T) {
	c, _, _, _ := newTestInterview(t, []string{"Q1", "Q2"})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)
	tickSeconds(t, c, thinkSeconds)

	c.Fragment("partial", true)
	c.SpeechError("not-allowed")
	syncLoop(t, c)

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.QuestionIndex)
	require.Len(t, snap.Answers, 2)
	assert.Equal(t, "partial", snap.Answers[0])
	assert.Empty(t, snap.SpeechError, "error message must clear when the next question starts")
}

func TestInterviewSpeechErrorDuringThinkingDoesNotAdvance(t *testing.T) {
	c, _, _, _ := newTestInterview(t, []string{"Q1", "Q2"})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)

	c.SpeechError("audio-capture")
	syncLoop(t, c)

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.QuestionIndex)
	assert.Equal(t, model.SubPhaseThinking, snap.SubPhase)
	assert.NotEmpty(t, snap.SpeechError)
}

func TestInterviewViolationPolicy(t *testing.T) {
	c, clock, _, sink := newTestInterview(t, []string{"Q1"})

	var terminations int32
	c.SetOnTerminate(func(reason model.TerminationReason) {
		require.Equal(t, model.TerminationProctoring, reason)
		atomic.AddInt32(&terminations, 1)
	})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)

	c.FaceAbsent("left frame")
	syncLoop(t, c)
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Violations)
	assert.Equal(t, proctorWarningMessage, snap.Warning)
	assert.False(t, snap.Terminated)
	assert.Equal(t, []string{"face_absent_warning"}, sink.Reasons())

	// The warning expires after its display window.
	clock.lastTicker().fire()
	require.Eventually(t, func() bool {
		return c.Snapshot().Warning == ""
	}, 2*time.Second, 5*time.Millisecond)

	c.FaceAbsent("left frame again")
	syncLoop(t, c)
	snap = c.Snapshot()
	assert.True(t, snap.Terminated)
	assert.Equal(t, model.TerminationProctoring, snap.Reason)
	assert.Equal(t, 2, snap.Violations)
	assert.Equal(t, []string{"face_absent_warning", "face_absent_termination"}, sink.Reasons())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&terminations) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Everything after termination is a no-op.
	c.Fragment("too late", true)
	c.FaceAbsent("gone")
	tickSeconds(t, c, 5)
	after := c.Snapshot()
	assert.Equal(t, snap.Phase, after.Phase)
	assert.Equal(t, snap.Violations, after.Violations)
	assert.Equal(t, int32(1), atomic.LoadInt32(&terminations))
}

func TestInterviewProctorErrorIsFatal(t *testing.T) {
	c, _, _, _ := newTestInterview(t, []string{"Q1"})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)

	c.ProctorError("camera permission revoked")
	syncLoop(t, c)

	snap := c.Snapshot()
	assert.True(t, snap.Terminated)
	assert.Equal(t, model.TerminationDevice, snap.Reason)
}

func TestInterviewGenerationFailureReturnsToUpload(t *testing.T) {
	clock := newFakeClock()
	source := &stubSource{sets: [][]string{
		{gateway.GenerationFailureMarker + ": upstream status 500"},
		{"Recovered question."},
	}}
	c := NewInterview(source, &stubScorer{}, clock, nil, zerolog.Nop())
	t.Cleanup(c.Close)

	c.Begin(model.ResumeDocument{Text: "resume"})
	require.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.Phase == model.PhaseUpload && snap.StartError != ""
	}, 2*time.Second, 5*time.Millisecond)

	snap := c.Snapshot()
	assert.Contains(t, snap.StartError, gateway.GenerationFailureMarker)
	assert.Empty(t, snap.Answers, "no partial state may survive a failed generation")

	// A fresh attempt from the upload phase must work.
	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)
	snap = c.Snapshot()
	assert.Empty(t, snap.StartError)
	assert.Equal(t, "Recovered question.", snap.Question)
}

func TestInterviewUserEnd(t *testing.T) {
	c, _, _, _ := newTestInterview(t, []string{"Q1"})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)

	c.End()
	syncLoop(t, c)

	snap := c.Snapshot()
	assert.True(t, snap.Terminated)
	assert.Equal(t, model.TerminationUser, snap.Reason)
	assert.Equal(t, model.SubPhaseIdle, snap.SubPhase)
}

func TestInterviewBeginOutsideUploadIsIgnored(t *testing.T) {
	c, _, _, _ := newTestInterview(t, []string{"Q1"})

	c.Begin(model.ResumeDocument{Text: "resume"})
	waitPhase(t, c, model.PhaseInProgress)

	c.Begin(model.ResumeDocument{Text: "another resume"})
	syncLoop(t, c)
	assert.Equal(t, model.PhaseInProgress, c.Snapshot().Phase)
}

func TestRegistryEviction(t *testing.T) {
	clock := newFakeClock()
	source := &stubSource{sets: [][]string{{"Q1"}}}
	c := NewInterview(source, &stubScorer{}, clock, nil, zerolog.Nop())

	r := NewRegistry(time.Hour, zerolog.Nop())
	r.Put(c)
	require.NotNil(t, r.Get(c.ID()))
	require.Equal(t, 1, r.Len())

	clock.Advance(2 * time.Hour)
	r.evictExpired()

	assert.Nil(t, r.Get(c.ID()))
	assert.Equal(t, 0, r.Len())

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("evicted session was not shut down")
	}
}
