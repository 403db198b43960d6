package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *ManualScheduler, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
	sched := &ManualScheduler{}
	base := []Option{WithClock(clock.Now), WithScheduler(sched)}
	return New(append(base, opts...)...), sched, clock
}

func typeString(t *testing.T, e *Engine, s string) {
	t.Helper()
	for _, r := range s {
		_, err := e.PressKey(r)
		require.NoError(t, err)
	}
}

func TestStartRejectsEmptyWordList(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := e.Start(nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, NotStarted, e.State())

	err = e.Start([]string{"ok", ""})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, NotStarted, e.State())
}

func TestStartRejectionKeepsRunningSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"abc"}))
	typeString(t, e, "ab")

	require.ErrorIs(t, e.Start([]string{}), ErrInvalidInput)
	assert.Equal(t, InProgress, e.State())
	assert.Equal(t, "ab", e.Input())
	assert.Equal(t, 2, e.CurrentStats().CharactersTyped)
}

func TestMutatingCallsBeforeStart(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.PressKey('a')
	require.ErrorIs(t, err, ErrNotStarted)
	_, err = e.Finish()
	require.ErrorIs(t, err, ErrNotStarted)

	stats := e.CurrentStats()
	assert.Equal(t, 100, stats.Accuracy)
	assert.Equal(t, 0, stats.WordsPerMinute)
}

func TestMissedKeyIsCountedAgainstExpectedChar(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"hi"}))

	press, err := e.PressKey('h')
	require.NoError(t, err)
	assert.True(t, press.Correct)
	assert.False(t, press.WordComplete)

	press, err = e.PressKey('x')
	require.NoError(t, err)
	assert.False(t, press.Correct)
	assert.Equal(t, 'i', press.Expected)
	assert.True(t, press.WordComplete)

	result, err := e.Finish()
	require.NoError(t, err)
	assert.Equal(t, 50, result.Accuracy)
	assert.Equal(t, 1, result.TotalErrors)
	assert.Equal(t, map[rune]int{'i': 1}, result.KeyErrors)
	assert.InDelta(t, 1.1, result.KeySizes['i'], 1e-9)
	assert.Equal(t, 0, result.WordsPerMinute)
}

func TestScaleNeverExceedsCeiling(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"aaaaaaaaaaaa"}))

	for i := 0; i < 12; i++ {
		_, err := e.PressKey('q')
		require.NoError(t, err)
		scale := e.Scale('a')
		assert.LessOrEqual(t, scale, MaxScale)
		assert.GreaterOrEqual(t, scale, MinScale)
	}
	assert.InDelta(t, MaxScale, e.Scale('a'), 1e-9)
	assert.Equal(t, 12, e.KeyErrors()['a'])
	assert.Equal(t, MinScale, e.Scale('q'))
}

func TestPerfectRunFinishesAutomatically(t *testing.T) {
	var finished []Result
	e, sched, clock := newTestEngine(t, WithOnFinish(func(r Result) {
		finished = append(finished, r)
	}))
	words := []string{"hello", "world", "typing"}
	require.NoError(t, e.Start(words))

	for i, word := range words {
		assert.Equal(t, i, e.WordIndex())
		assert.Equal(t, word, e.Word())
		typeString(t, e, word)
		clock.Advance(5 * time.Second)
		assert.Equal(t, 1, sched.RunPending())
	}

	require.Equal(t, Finished, e.State())
	require.Len(t, finished, 1)
	result := finished[0]
	assert.Equal(t, 100, result.Accuracy)
	assert.Equal(t, 0, result.TotalErrors)
	assert.Empty(t, result.KeyErrors)
	assert.Equal(t, len(words), result.WordsCompleted)
	assert.Equal(t, len(words), e.WordIndex())
	for _, r := range "helowrdtypign" {
		assert.Equal(t, MinScale, e.Scale(r))
	}
	// 16 chars over 15 seconds: (16/5)/0.25 = 12.8
	assert.Equal(t, 13, result.WordsPerMinute)

	_, err := e.PressKey('a')
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestWordCorrectPlusErrorsEqualsLength(t *testing.T) {
	cases := []struct {
		word  string
		typed string
	}{
		{word: "keyboard", typed: "keyboard"},
		{word: "keyboard", typed: "kexboarf"},
		{word: "mobile", typed: "zzzzzz"},
		{word: "a", typed: "b"},
	}
	for _, tc := range cases {
		t.Run(tc.word+"/"+tc.typed, func(t *testing.T) {
			e, sched, _ := newTestEngine(t)
			require.NoError(t, e.Start([]string{tc.word, "next"}))
			typeString(t, e, tc.typed)
			sched.RunPending()

			stats := e.CurrentStats()
			assert.Equal(t, len(tc.word), stats.CorrectCharacters+stats.Errors)
			assert.Equal(t, stats.CharactersTyped, stats.CorrectCharacters+stats.Errors)
			assert.Equal(t, 1, e.WordIndex())
		})
	}
}

func TestPressAfterWordCompleteIsIgnored(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab", "cd"}))
	typeString(t, e, "ab")

	press, err := e.PressKey('z')
	require.NoError(t, err)
	assert.True(t, press.Ignored)
	assert.Equal(t, 2, e.CurrentStats().CharactersTyped)
	assert.Empty(t, e.KeyErrors())
	assert.Equal(t, "ab", e.Input())

	sched.RunPending()
	assert.Equal(t, "cd", e.Word())
	assert.Equal(t, "", e.Input())
}

func TestFinishVoidsPendingAdvance(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab", "cd"}))
	typeString(t, e, "ab")
	require.Equal(t, 1, sched.Pending())

	result, err := e.Finish()
	require.NoError(t, err)
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, sched.RunPending())
	assert.Equal(t, Finished, e.State())
	assert.Equal(t, 0, result.WordsCompleted)
	assert.Equal(t, 0, e.WordIndex())
}

func TestStaleAdvanceCallbackIsVoided(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab", "cd"}))
	typeString(t, e, "ab")
	stale := e.generation

	require.NoError(t, e.Start([]string{"xy", "zw"}))
	e.advance(stale)

	assert.Equal(t, 0, e.WordIndex())
	assert.Equal(t, "xy", e.Word())
	assert.Equal(t, InProgress, e.State())
}

func TestFinishTwiceIsClosed(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab"}))
	_, err := e.Finish()
	require.NoError(t, err)

	_, err = e.Finish()
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = e.PressKey('a')
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestCurrentStatsMatchesResult(t *testing.T) {
	e, sched, clock := newTestEngine(t)
	require.NoError(t, e.Start([]string{"accuracy", "speed"}))
	typeString(t, e, "acxuracy")
	sched.RunPending()
	typeString(t, e, "s")
	clock.Advance(30 * time.Second)

	live := e.CurrentStats()
	result, err := e.Finish()
	require.NoError(t, err)

	assert.Equal(t, live, result.Stats())
	assert.Equal(t, 89, live.Accuracy)
	// 9 chars over half a minute: (9/5)/0.5 = 3.6
	assert.Equal(t, 4, live.WordsPerMinute)
	assert.Equal(t, live, e.CurrentStats())
}

func TestStatsBounds(t *testing.T) {
	e, _, clock := newTestEngine(t)
	require.NoError(t, e.Start([]string{"zzzz"}))
	typeString(t, e, "aaa")
	clock.Advance(-time.Minute)

	stats := e.CurrentStats()
	assert.Equal(t, 0, stats.Accuracy)
	assert.Equal(t, 0, stats.WordsPerMinute)
}

func TestRestartResetsCountersAndRetainsSizes(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab", "cd"}))
	typeString(t, e, "xb")
	sched.RunPending()
	_, err := e.Finish()
	require.NoError(t, err)

	require.NoError(t, e.Start([]string{"ef"}))
	stats := e.CurrentStats()
	assert.Equal(t, InProgress, e.State())
	assert.Equal(t, 0, stats.CharactersTyped)
	assert.Equal(t, 0, stats.CorrectCharacters)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, 0, e.WordIndex())
	assert.Empty(t, e.KeyErrors())
	assert.InDelta(t, 1.1, e.Scale('a'), 1e-9)
	sizes := e.KeySizes()
	require.Len(t, sizes, 1)
	assert.InDelta(t, 1.1, sizes['a'], 1e-9)
	_, ok := e.Result()
	assert.False(t, ok)
}

func TestRestartWithResetPolicy(t *testing.T) {
	e, _, _ := newTestEngine(t,
		WithKeySizePolicy(ResetKeySizes),
		WithKeySizes(map[rune]float64{'e': 1.2}),
	)
	require.NoError(t, e.Start([]string{"ab"}))
	typeString(t, e, "xx")
	assert.InDelta(t, 1.1, e.Scale('a'), 1e-9)

	require.NoError(t, e.Start([]string{"ab"}))
	assert.Equal(t, MinScale, e.Scale('a'))
	assert.InDelta(t, 1.2, e.Scale('e'), 1e-9)
}

func TestRestartVoidsPendingAdvance(t *testing.T) {
	e, sched, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab", "cd"}))
	typeString(t, e, "ab")

	require.NoError(t, e.Start([]string{"ef", "gh"}))
	sched.RunPending()
	assert.Equal(t, 0, e.WordIndex())
	assert.Equal(t, "ef", e.Word())
}

func TestWithKeySizesClamps(t *testing.T) {
	e, _, _ := newTestEngine(t, WithKeySizes(map[rune]float64{'a': 2.0, 'b': 0.5, 'c': 1.15}))
	assert.Equal(t, MaxScale, e.Scale('a'))
	assert.Equal(t, MinScale, e.Scale('b'))
	assert.InDelta(t, 1.15, e.Scale('c'), 1e-9)
}

func TestScaleForErrors(t *testing.T) {
	assert.Equal(t, MinScale, ScaleForErrors(0))
	assert.Equal(t, MinScale, ScaleForErrors(-2))
	assert.InDelta(t, 1.2, ScaleForErrors(2), 1e-9)
	assert.Equal(t, MaxScale, ScaleForErrors(3))
	assert.Equal(t, MaxScale, ScaleForErrors(40))
}

func TestResultIsACopy(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.Start([]string{"ab"}))
	typeString(t, e, "x")
	_, err := e.Finish()
	require.NoError(t, err)

	first, ok := e.Result()
	require.True(t, ok)
	first.KeyErrors['a'] = 99

	second, _ := e.Result()
	assert.Equal(t, 1, second.KeyErrors['a'])
}

func TestParseKeySizePolicy(t *testing.T) {
	p, err := ParseKeySizePolicy("reset")
	require.NoError(t, err)
	assert.Equal(t, ResetKeySizes, p)

	p, err = ParseKeySizePolicy("")
	require.NoError(t, err)
	assert.Equal(t, RetainKeySizes, p)

	_, err = ParseKeySizePolicy("grow")
	require.Error(t, err)
}

func TestTimerSchedulerAdvances(t *testing.T) {
	done := make(chan Result, 1)
	e := New(
		WithSettleDelay(5*time.Millisecond),
		WithOnFinish(func(r Result) { done <- r }),
	)
	require.NoError(t, e.Start([]string{"go"}))
	typeString(t, e, "go")

	select {
	case r := <-done:
		assert.Equal(t, 100, r.Accuracy)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish after settle delay")
	}
	assert.Equal(t, Finished, e.State())
}

func TestTimerSchedulerCancel(t *testing.T) {
	ran := make(chan struct{}, 1)
	token := TimerScheduler{}.Schedule(time.Hour, func() { ran <- struct{}{} })
	assert.True(t, token.Cancel())
	assert.False(t, token.Cancel())
	assert.Len(t, ran, 0)
}
