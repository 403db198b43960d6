// Package engine implements the typing session state machine: per-key
// comparison against a word list, running accuracy and speed, and the
// adaptive key scaling used by renderers.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	// DefaultSettleDelay is the pause between completing a word and advancing.
	DefaultSettleDelay = 300 * time.Millisecond

	MinScale  = 1.0
	MaxScale  = 1.3
	ScaleStep = 0.1

	charsPerWord = 5.0
)

var (
	// ErrInvalidInput is returned by Start for an empty word list or an empty word.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSessionClosed is returned by mutating calls after the session finished.
	ErrSessionClosed = errors.New("session closed")
	// ErrNotStarted is returned by mutating calls before the first Start.
	ErrNotStarted = errors.New("session not started")
)

// State is the lifecycle phase of a session.
type State int

const (
	NotStarted State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// KeySizePolicy controls what happens to learned key scales on restart.
type KeySizePolicy int

const (
	// RetainKeySizes keeps scales learned in earlier sessions.
	RetainKeySizes KeySizePolicy = iota
	// ResetKeySizes restores the initial scales on every Start.
	ResetKeySizes
)

// ParseKeySizePolicy maps "retain" and "reset" to a policy.
func ParseKeySizePolicy(value string) (KeySizePolicy, error) {
	switch value {
	case "retain", "":
		return RetainKeySizes, nil
	case "reset":
		return ResetKeySizes, nil
	default:
		return RetainKeySizes, fmt.Errorf("unknown key size policy %q (want retain or reset)", value)
	}
}

// Press describes the outcome of a single key press.
type Press struct {
	Key      rune
	Expected rune
	Correct  bool
	// Ignored is set when the current word was already fully typed and the
	// press arrived before the word advanced. Ignored presses change nothing.
	Ignored      bool
	WordComplete bool
}

// Stats is a live snapshot of session metrics.
type Stats struct {
	Accuracy          int
	WordsPerMinute    int
	Errors            int
	CharactersTyped   int
	CorrectCharacters int
	Elapsed           time.Duration
}

// Result is the immutable summary produced when a session finishes.
type Result struct {
	Accuracy          int
	WordsPerMinute    int
	TotalErrors       int
	CharactersTyped   int
	CorrectCharacters int
	WordsCompleted    int
	KeyErrors         map[rune]int
	KeySizes          map[rune]float64
	StartedAt         time.Time
	EndedAt           time.Time
	Duration          time.Duration
}

// Stats returns the metrics captured in the result.
func (r Result) Stats() Stats {
	return Stats{
		Accuracy:          r.Accuracy,
		WordsPerMinute:    r.WordsPerMinute,
		Errors:            r.TotalErrors,
		CharactersTyped:   r.CharactersTyped,
		CorrectCharacters: r.CorrectCharacters,
		Elapsed:           r.Duration,
	}
}

func (r Result) clone() Result {
	r.KeyErrors = copyCounts(r.KeyErrors)
	r.KeySizes = copySizes(r.KeySizes)
	return r
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithScheduler overrides how the word advance is deferred.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithSettleDelay sets the pause before advancing to the next word.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.settleDelay = d
		}
	}
}

// WithKeySizePolicy sets the restart policy for learned key scales.
func WithKeySizePolicy(p KeySizePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithKeySizes seeds the initial key scales. Values are clamped to
// [MinScale, MaxScale].
func WithKeySizes(sizes map[rune]float64) Option {
	return func(e *Engine) {
		e.initialSizes = make(map[rune]float64, len(sizes))
		for key, scale := range sizes {
			e.initialSizes[key] = clampScale(scale)
		}
	}
}

// WithOnFinish registers a callback for sessions that end by completing the
// last word. It runs outside the engine lock and is not called by Finish.
func WithOnFinish(fn func(Result)) Option {
	return func(e *Engine) {
		e.onFinish = fn
	}
}

// Engine tracks one typing session at a time.
type Engine struct {
	mu sync.Mutex

	clock        func() time.Time
	scheduler    Scheduler
	settleDelay  time.Duration
	policy       KeySizePolicy
	initialSizes map[rune]float64
	onFinish     func(Result)

	state     State
	words     []string
	wordIndex int
	target    []rune
	input     []rune
	startedAt time.Time

	typed     int
	correct   int
	errCount  int
	keyErrors map[rune]int
	keySizes  map[rune]float64

	pending    Token
	generation uint64
	result     Result
}

// New constructs an idle engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:       time.Now,
		scheduler:   TimerScheduler{},
		settleDelay: DefaultSettleDelay,
		policy:      RetainKeySizes,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.keySizes = copySizes(e.initialSizes)
	e.keyErrors = map[rune]int{}
	return e
}

// Start begins a new session over words, restarting any previous one.
func (e *Engine) Start(words []string) error {
	if len(words) == 0 {
		return fmt.Errorf("%w: word list is empty", ErrInvalidInput)
	}
	for i, word := range words {
		if word == "" {
			return fmt.Errorf("%w: word %d is empty", ErrInvalidInput, i)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.voidPendingLocked()
	e.words = append([]string(nil), words...)
	e.wordIndex = 0
	e.target = []rune(e.words[0])
	e.input = nil
	e.typed = 0
	e.correct = 0
	e.errCount = 0
	e.keyErrors = map[rune]int{}
	if e.policy == ResetKeySizes {
		e.keySizes = copySizes(e.initialSizes)
	}
	e.startedAt = e.clock()
	e.result = Result{}
	e.state = InProgress
	return nil
}

// PressKey records one key press against the current word.
func (e *Engine) PressKey(key rune) (Press, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case NotStarted:
		return Press{}, ErrNotStarted
	case Finished:
		return Press{}, ErrSessionClosed
	}

	press := Press{Key: key}
	pos := len(e.input)
	if pos >= len(e.target) {
		press.Ignored = true
		return press, nil
	}

	expected := e.target[pos]
	press.Expected = expected
	e.input = append(e.input, key)
	e.typed++
	if key == expected {
		e.correct++
		press.Correct = true
	} else {
		e.errCount++
		e.keyErrors[expected]++
		e.keySizes[expected] = math.Min(e.scaleLocked(expected)+ScaleStep, MaxScale)
	}

	if len(e.input) == len(e.target) {
		press.WordComplete = true
		e.scheduleAdvanceLocked()
	}
	return press, nil
}

// Finish ends the session early or after the fact and returns its result.
func (e *Engine) Finish() (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case NotStarted:
		return Result{}, ErrNotStarted
	case Finished:
		return Result{}, ErrSessionClosed
	}
	e.voidPendingLocked()
	return e.finalizeLocked(), nil
}

// CurrentStats returns live metrics without side effects. After the session
// finished it reports the final result.
func (e *Engine) CurrentStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case NotStarted:
		return computeStats(0, 0, 0, 0)
	case Finished:
		return e.result.Stats()
	}
	return computeStats(e.typed, e.correct, e.errCount, e.clock().Sub(e.startedAt))
}

// State returns the lifecycle phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Result returns the last finished result, if any.
func (e *Engine) Result() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Finished {
		return Result{}, false
	}
	return e.result.clone(), true
}

// Word returns the current target word, or "" when none is active.
func (e *Engine) Word() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.target)
}

// Input returns what has been typed for the current word.
func (e *Engine) Input() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.input)
}

// WordIndex returns the index of the current word. It equals the word count
// once every word has been completed.
func (e *Engine) WordIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wordIndex
}

// WordCount returns the number of words in the session.
func (e *Engine) WordCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.words)
}

// SettleDelay returns the configured word advance delay.
func (e *Engine) SettleDelay() time.Duration {
	return e.settleDelay
}

// Scale returns the scale factor for key; keys never mistyped are MinScale.
func (e *Engine) Scale(key rune) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scaleLocked(key)
}

// KeySizes returns a copy of the learned key scales.
func (e *Engine) KeySizes() map[rune]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copySizes(e.keySizes)
}

// KeyErrors returns a copy of the per-key error counts for the session.
func (e *Engine) KeyErrors() map[rune]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyCounts(e.keyErrors)
}

// ScaleForErrors returns the scale a key reaches after n misses.
func ScaleForErrors(n int) float64 {
	if n <= 0 {
		return MinScale
	}
	return clampScale(MinScale + ScaleStep*float64(n))
}

func (e *Engine) scaleLocked(key rune) float64 {
	if scale, ok := e.keySizes[key]; ok {
		return scale
	}
	return MinScale
}

func (e *Engine) scheduleAdvanceLocked() {
	e.generation++
	gen := e.generation
	e.pending = e.scheduler.Schedule(e.settleDelay, func() {
		e.advance(gen)
	})
}

// voidPendingLocked cancels a scheduled advance. The generation bump covers
// callbacks that already fired and are waiting on the lock.
func (e *Engine) voidPendingLocked() {
	e.generation++
	if e.pending != nil {
		e.pending.Cancel()
		e.pending = nil
	}
}

func (e *Engine) advance(gen uint64) {
	e.mu.Lock()
	if e.state != InProgress || gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.pending = nil
	e.wordIndex++
	e.input = nil

	finished := false
	var result Result
	if e.wordIndex < len(e.words) {
		e.target = []rune(e.words[e.wordIndex])
	} else {
		e.target = nil
		result = e.finalizeLocked()
		finished = true
	}
	onFinish := e.onFinish
	e.mu.Unlock()

	if finished && onFinish != nil {
		onFinish(result)
	}
}

func (e *Engine) finalizeLocked() Result {
	endedAt := e.clock()
	duration := endedAt.Sub(e.startedAt)
	stats := computeStats(e.typed, e.correct, e.errCount, duration)
	e.result = Result{
		Accuracy:          stats.Accuracy,
		WordsPerMinute:    stats.WordsPerMinute,
		TotalErrors:       e.errCount,
		CharactersTyped:   e.typed,
		CorrectCharacters: e.correct,
		WordsCompleted:    e.wordIndex,
		KeyErrors:         copyCounts(e.keyErrors),
		KeySizes:          copySizes(e.keySizes),
		StartedAt:         e.startedAt,
		EndedAt:           endedAt,
		Duration:          duration,
	}
	e.state = Finished
	return e.result.clone()
}

func computeStats(typed, correct, errCount int, elapsed time.Duration) Stats {
	accuracy := 100
	if typed > 0 {
		accuracy = int(math.Round(100 * float64(correct) / float64(typed)))
	}
	wpm := 0
	if minutes := elapsed.Minutes(); minutes > 0 {
		wpm = int(math.Round(float64(typed) / charsPerWord / minutes))
	}
	return Stats{
		Accuracy:          accuracy,
		WordsPerMinute:    wpm,
		Errors:            errCount,
		CharactersTyped:   typed,
		CorrectCharacters: correct,
		Elapsed:           elapsed,
	}
}

func clampScale(scale float64) float64 {
	return math.Max(MinScale, math.Min(scale, MaxScale))
}

func copySizes(src map[rune]float64) map[rune]float64 {
	out := make(map[rune]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func copyCounts(src map[rune]int) map[rune]int {
	out := make(map[rune]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
