package submit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mosaic-client/internal/client"
	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/model"
	"github.com/ytget/mosaic-client/internal/result"
	"github.com/ytget/mosaic-client/internal/selection"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeTicker fires only when the test calls Tick
type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

func (f *fakeTicker) Tick() {
	f.ch <- time.Now()
}

type tickerSource struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (s *tickerSource) factory(time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	s.mu.Lock()
	s.tickers = append(s.tickers, t)
	s.mu.Unlock()
	return t
}

func (s *tickerSource) last() *fakeTicker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tickers) == 0 {
		return nil
	}
	return s.tickers[len(s.tickers)-1]
}

type response struct {
	res *client.Result
	err error
}

// fakeBuilder answers each request with the next value sent on respond.
// When honorContext is set it also returns as soon as ctx is cancelled.
type fakeBuilder struct {
	respond      chan response
	honorContext bool
	calls        atomic.Int32

	mu     sync.Mutex
	target *model.File
	tiles  model.TileSource
	params model.SubmissionParameters
}

func newFakeBuilder(honorContext bool) *fakeBuilder {
	return &fakeBuilder{respond: make(chan response, 1), honorContext: honorContext}
}

func (f *fakeBuilder) BuildMosaic(ctx context.Context, target *model.File, tiles model.TileSource, params model.SubmissionParameters) (*client.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.target, f.tiles, f.params = target, tiles, params
	f.mu.Unlock()

	if f.honorContext {
		select {
		case r := <-f.respond:
			return r.res, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r := <-f.respond
	return r.res, r.err
}

type harness struct {
	store    *selection.Store
	builder  *fakeBuilder
	holder   *result.Holder
	tickers  *tickerSource
	ctrl     *Controller
	mu       sync.Mutex
	progress []int
}

func newHarness(t *testing.T, honorContext bool) *harness {
	t.Helper()
	h := &harness{
		store:   selection.NewStore(nil, logger.Nop()),
		builder: newFakeBuilder(honorContext),
		holder:  result.NewHolder(t.TempDir(), logger.Nop()),
		tickers: &tickerSource{},
	}
	h.ctrl = NewController(h.store, h.builder, h.holder,
		WithTickerFactory(h.tickers.factory),
		WithLogger(logger.Nop()),
	)
	h.ctrl.SetUpdateCallback(func(s State) {
		h.mu.Lock()
		h.progress = append(h.progress, s.Progress)
		h.mu.Unlock()
	})
	t.Cleanup(func() {
		// unblock a builder that ignores its context
		select {
		case h.builder.respond <- response{err: context.Canceled}:
		default:
		}
		h.ctrl.Close()
	})
	return h
}

func (h *harness) progressHistory() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(h.progress))
	copy(out, h.progress)
	return out
}

func (h *harness) selectTarget() {
	h.store.SetTarget(context.Background(), model.NewMemoryFile("target.jpg", "image/jpeg", []byte("T")))
}

func (h *harness) selectArchive() {
	h.store.SetTileArchive(model.NewMemoryFile("tiles.zip", "application/zip", []byte("PK")))
}

func (h *harness) selectFiles(n int) {
	files := make([]*model.File, n)
	for i := range files {
		files[i] = model.NewMemoryFile("tile.png", "image/png", []byte{byte(i + 1)})
	}
	h.store.SetTileFileSet(context.Background(), files, false)
}

func (h *harness) waitStatus(t *testing.T, status model.SubmissionStatus) State {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.ctrl.State().Status == status
	}, waitFor, tick, "expected status %s", status)
	return h.ctrl.State()
}

func TestSubmit_MissingTarget(t *testing.T) {
	h := newHarness(t, true)
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())

	require.ErrorIs(t, err, ErrMissingTarget)
	state := h.ctrl.State()
	assert.Equal(t, model.ErrorKindMissingTarget, state.ErrorKind)
	assert.NotEmpty(t, state.LastError)
	assert.Equal(t, 0, state.Progress)
	assert.NotEqual(t, model.SubmissionStatusPending, state.Status)
	assert.Equal(t, int32(0), h.builder.calls.Load(), "no request should be sent")
}

func TestSubmit_MissingTargetCheckedFirst(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.ctrl.Submit(context.Background())

	require.ErrorIs(t, err, ErrMissingTarget)
}

func TestSubmit_MissingTiles(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()

	_, err := h.ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrMissingTiles)
	assert.Equal(t, model.ErrorKindMissingTiles, h.ctrl.State().ErrorKind)

	h.selectFiles(0)
	_, err = h.ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrMissingTiles)
	assert.Equal(t, int32(0), h.builder.calls.Load())
}

func TestSubmit_ArchiveSucceeds(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	task, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusPending, task.Status)
	assert.Equal(t, model.ProgressAccepted, task.Percent)
	assert.False(t, h.ctrl.CanSubmit(), "cannot submit while pending")

	h.builder.respond <- response{res: &client.Result{Data: []byte("JPEG"), ContentType: "image/jpeg"}}

	state := h.waitStatus(t, model.SubmissionStatusSucceeded)
	assert.Equal(t, model.ProgressComplete, state.Progress)
	assert.Empty(t, state.LastError)
	require.NotNil(t, state.Artifact)
	assert.True(t, h.holder.IsAlive(state.Artifact))
	assert.True(t, state.CanSubmit)
	assert.True(t, h.tickers.last().stopped.Load(), "ticker must be stopped")

	history := h.progressHistory()
	require.GreaterOrEqual(t, len(history), 2)
	assert.Equal(t, model.ProgressResponse, history[len(history)-2], "95 precedes completion")
	assert.Equal(t, model.ProgressComplete, history[len(history)-1])

	h.builder.mu.Lock()
	defer h.builder.mu.Unlock()
	assert.Equal(t, model.TileSourceArchive, h.builder.tiles.Kind())
	assert.Equal(t, "target.jpg", h.builder.target.Name)
}

func TestSubmit_FileSetServiceError(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectFiles(3)

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)

	h.builder.respond <- response{err: &client.ServiceError{StatusCode: 500, Message: "bad tile"}}

	state := h.waitStatus(t, model.SubmissionStatusFailed)
	assert.Equal(t, "bad tile", state.LastError)
	assert.Equal(t, model.ErrorKindTransport, state.ErrorKind)
	assert.Equal(t, 0, state.Progress)
	assert.Nil(t, state.Artifact)
	assert.True(t, state.CanSubmit, "submit is available again after a failure")
	h.ctrl.Wait()
	assert.Contains(t, h.progressHistory(), model.ProgressResponse, "a service answer reaches the response milestone")

	h.builder.mu.Lock()
	defer h.builder.mu.Unlock()
	assert.Equal(t, 3, h.builder.tiles.Len())
}

func TestSubmit_NotConfigured(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	h.builder.respond <- response{err: client.ErrNotConfigured}

	state := h.waitStatus(t, model.SubmissionStatusFailed)
	assert.Equal(t, model.ErrorKindTransport, state.ErrorKind)
	assert.Equal(t, client.ErrNotConfigured.Error(), state.LastError)
}

func TestSubmit_TransportErrorSkipsResponseProgress(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantResponse bool
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), false},
		{"not configured", client.ErrNotConfigured, false},
		{"service error", &client.ServiceError{StatusCode: 500, Message: "bad tile"}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t, true)
			h.selectTarget()
			h.selectArchive()

			_, err := h.ctrl.Submit(context.Background())
			require.NoError(t, err)
			h.builder.respond <- response{err: test.err}

			h.waitStatus(t, model.SubmissionStatusFailed)
			h.ctrl.Wait()

			history := h.progressHistory()
			require.NotEmpty(t, history)
			assert.Equal(t, test.wantResponse, containsProgress(history, model.ProgressResponse), "history %v", history)
			assert.Equal(t, 0, history[len(history)-1])
		})
	}
}

func containsProgress(history []int, p int) bool {
	for _, v := range history {
		if v == p {
			return true
		}
	}
	return false
}

func TestCancel(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)

	require.True(t, h.ctrl.Cancel())

	state := h.ctrl.State()
	assert.Equal(t, model.SubmissionStatusCancelled, state.Status)
	assert.Equal(t, 0, state.Progress)
	assert.Empty(t, state.LastError)
	assert.Equal(t, model.ErrorKindNone, state.ErrorKind)
	assert.True(t, state.CanSubmit)
	assert.True(t, h.tickers.last().stopped.Load())

	h.ctrl.Wait()
	assert.Equal(t, model.SubmissionStatusCancelled, h.ctrl.State().Status, "cancellation error must not surface")

	// and a new submission can start right away
	_, err = h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusPending, h.ctrl.State().Status)
}

func TestCancel_DuringSlowUpdateKeepsLatestState(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	var (
		mu        sync.Mutex
		delivered []State
		once      sync.Once
	)
	entered := make(chan struct{})
	gate := make(chan struct{})
	h.ctrl.SetUpdateCallback(func(s State) {
		if s.Status == model.SubmissionStatusPending && s.Progress > model.ProgressAccepted {
			// hold the first tick delivery until Cancel has run
			once.Do(func() {
				close(entered)
				<-gate
			})
		}
		mu.Lock()
		delivered = append(delivered, s)
		mu.Unlock()
	})

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	h.tickers.last().Tick()
	<-entered

	cancelled := make(chan bool, 1)
	go func() { cancelled <- h.ctrl.Cancel() }()
	require.Eventually(t, func() bool {
		return h.ctrl.State().Status == model.SubmissionStatusCancelled
	}, waitFor, tick)

	close(gate)
	require.True(t, <-cancelled)
	h.ctrl.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, delivered)
	last := delivered[len(delivered)-1]
	assert.Equal(t, model.SubmissionStatusCancelled, last.Status, "a stale tick must not be delivered after cancellation")
	assert.Equal(t, 0, last.Progress)
	assert.True(t, last.CanSubmit)
}

func TestCancel_NothingPending(t *testing.T) {
	h := newHarness(t, true)
	assert.False(t, h.ctrl.Cancel())
	assert.Equal(t, model.SubmissionStatusIdle, h.ctrl.State().Status)
}

func TestCancel_LateResponseIgnored(t *testing.T) {
	h := newHarness(t, false)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, h.ctrl.Cancel())

	h.builder.respond <- response{res: &client.Result{Data: []byte("LATE"), ContentType: "image/jpeg"}}
	h.ctrl.Wait()

	state := h.ctrl.State()
	assert.Equal(t, model.SubmissionStatusCancelled, state.Status)
	assert.Equal(t, 0, state.Progress)
	assert.Nil(t, state.Artifact, "late response must not create an artifact")
	assert.Nil(t, h.holder.Current())
}

func TestProgressSimulation(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	ticker := h.tickers.last()

	expected := model.ProgressAccepted
	for i := 0; i < 60; i++ {
		ticker.Tick()
		expected = model.NextSimulatedProgress(expected)
		want := expected
		require.Eventually(t, func() bool {
			return h.ctrl.State().Progress == want
		}, waitFor, tick)
		require.LessOrEqual(t, h.ctrl.State().Progress, model.ProgressCeiling)
	}
	assert.Equal(t, model.ProgressCeiling, h.ctrl.State().Progress, "progress settles at the ceiling")

	h.builder.respond <- response{res: &client.Result{Data: []byte("JPEG")}}
	state := h.waitStatus(t, model.SubmissionStatusSucceeded)
	assert.Equal(t, model.ProgressComplete, state.Progress)

	for _, p := range h.progressHistory() {
		if p > model.ProgressCeiling && p != model.ProgressResponse && p != model.ProgressComplete {
			t.Errorf("Unexpected progress value %d", p)
		}
	}
}

func TestSucceeded_ReplacesPreviousArtifact(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	h.builder.respond <- response{res: &client.Result{Data: []byte("ONE")}}
	first := h.waitStatus(t, model.SubmissionStatusSucceeded).Artifact
	require.NotNil(t, first)

	_, err = h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, h.holder.IsAlive(first), "entering pending releases the previous artifact")
	assert.Nil(t, h.ctrl.State().Artifact)

	h.builder.respond <- response{res: &client.Result{Data: []byte("TWO")}}
	require.Eventually(t, func() bool {
		s := h.ctrl.State()
		return s.Status == model.SubmissionStatusSucceeded && s.Artifact != nil && s.Artifact.ID != first.ID
	}, waitFor, tick)

	data, err := h.holder.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "TWO", string(data))
}

func TestSubmit_WhilePending(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return h.builder.calls.Load() == 1 }, waitFor, tick)

	_, err = h.ctrl.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionPending)
	assert.Equal(t, int32(1), h.builder.calls.Load())
}

func TestCanSubmit(t *testing.T) {
	h := newHarness(t, true)

	assert.False(t, h.ctrl.CanSubmit(), "no target, no tiles")
	h.selectTarget()
	assert.False(t, h.ctrl.CanSubmit(), "no tiles")
	h.selectFiles(0)
	assert.False(t, h.ctrl.CanSubmit(), "empty file set")
	h.selectFiles(2)
	assert.True(t, h.ctrl.CanSubmit())
	h.selectArchive()
	assert.True(t, h.ctrl.CanSubmit())

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, h.ctrl.CanSubmit(), "pending")

	h.ctrl.Cancel()
	assert.True(t, h.ctrl.CanSubmit())
}

func TestReset(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	h.builder.respond <- response{res: &client.Result{Data: []byte("JPEG")}}
	artifact := h.waitStatus(t, model.SubmissionStatusSucceeded).Artifact

	h.ctrl.Reset()

	state := h.ctrl.State()
	assert.Equal(t, model.SubmissionStatusIdle, state.Status)
	assert.Equal(t, 0, state.Progress)
	assert.Empty(t, state.LastError)
	assert.Nil(t, state.Artifact)
	assert.False(t, state.CanSubmit)
	assert.False(t, h.holder.IsAlive(artifact))
	assert.False(t, h.store.Snapshot().HasTarget())
}

func TestReset_WhilePending(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	ticker := h.tickers.last()

	h.ctrl.Reset()
	h.ctrl.Wait()

	assert.True(t, ticker.stopped.Load())
	state := h.ctrl.State()
	assert.Equal(t, model.SubmissionStatusIdle, state.Status)
	assert.Empty(t, state.LastError)
}

func TestSubmit_ParentContextCancelled(t *testing.T) {
	h := newHarness(t, true)
	h.selectTarget()
	h.selectArchive()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := h.ctrl.Submit(ctx)
	require.NoError(t, err)
	cancel()

	state := h.waitStatus(t, model.SubmissionStatusCancelled)
	assert.Empty(t, state.LastError)
	assert.Equal(t, 0, state.Progress)
}

func TestParameters(t *testing.T) {
	h := newHarness(t, true)
	assert.Equal(t, model.DefaultParameters(), h.ctrl.Parameters())

	h.ctrl.SetParameters(model.SubmissionParameters{TileSize: 200, Blend: -1, MaxWidth: 100, NoImmediateRepeat: false})
	p := h.ctrl.Parameters()
	assert.Equal(t, model.MaxTileSize, p.TileSize)
	assert.Equal(t, model.MinBlend, p.Blend)
	assert.Equal(t, model.MinMaxWidth, p.MaxWidth)
	assert.False(t, p.NoImmediateRepeat)

	h.selectTarget()
	h.selectArchive()
	_, err := h.ctrl.Submit(context.Background())
	require.NoError(t, err)
	h.builder.respond <- response{err: errors.New("boom")}
	h.waitStatus(t, model.SubmissionStatusFailed)

	h.builder.mu.Lock()
	defer h.builder.mu.Unlock()
	assert.Equal(t, p, h.builder.params)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err      error
		expected model.ErrorKind
	}{
		{nil, model.ErrorKindNone},
		{ErrMissingTarget, model.ErrorKindMissingTarget},
		{ErrMissingTiles, model.ErrorKindMissingTiles},
		{context.Canceled, model.ErrorKindNone},
		{&client.ServiceError{StatusCode: 500, Message: "x"}, model.ErrorKindTransport},
		{errors.New("dial tcp: refused"), model.ErrorKindTransport},
	}

	for _, test := range tests {
		if got := ClassifyError(test.err); got != test.expected {
			t.Errorf("ClassifyError(%v) = %v, expected %v", test.err, got, test.expected)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(&client.ServiceError{StatusCode: 502, Message: ""}); got != UnknownErrorMessage {
		t.Errorf("Expected fallback message, got %q", got)
	}
	if got := ErrorMessage(errors.New("HTTP 500")); got != "HTTP 500" {
		t.Errorf("Expected message passthrough, got %q", got)
	}
}
