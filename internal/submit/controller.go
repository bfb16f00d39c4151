package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/mosaic-client/internal/client"
	"github.com/ytget/mosaic-client/internal/logger"
	"github.com/ytget/mosaic-client/internal/model"
	"github.com/ytget/mosaic-client/internal/result"
	"github.com/ytget/mosaic-client/internal/selection"
)

// DefaultProgressInterval is the progress simulation tick
const DefaultProgressInterval = 350 * time.Millisecond

const componentName = "SubmitController"

// Ticker drives progress simulation
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every interval
type TickerFactory func(interval time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(interval time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(interval)}
}

// State is a snapshot of the controller for the display layer
type State struct {
	SubmissionID string
	Status       model.SubmissionStatus
	Progress     int
	LastError    string
	ErrorKind    model.ErrorKind
	Artifact     *result.Artifact
	CanSubmit    bool
	Parameters   model.SubmissionParameters
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithProgressInterval sets the progress simulation tick
func WithProgressInterval(interval time.Duration) Option {
	return func(c *Controller) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithTickerFactory replaces the wall-clock ticker
func WithTickerFactory(factory TickerFactory) Option {
	return func(c *Controller) {
		if factory != nil {
			c.newTicker = factory
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.logger = log
		}
	}
}

// Controller owns the single submission slot: validation, the request
// lifecycle, simulated progress, cancellation and the result hand-off.
type Controller struct {
	mu        sync.Mutex
	store     *selection.Store
	builder   client.MosaicBuilder
	holder    *result.Holder
	logger    logger.Logger
	interval  time.Duration
	newTicker TickerFactory

	params model.SubmissionParameters
	task   *model.Submission // current or last submission
	cancel context.CancelFunc
	ticker Ticker

	onUpdate func(State) // callback for UI updates
	emitMu   sync.Mutex  // orders state deliveries
	wg       sync.WaitGroup
}

// NewController creates a controller bound to a selection store, a mosaic
// service client and a result holder
func NewController(store *selection.Store, builder client.MosaicBuilder, holder *result.Holder, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		builder:   builder,
		holder:    holder,
		logger:    logger.Nop(),
		interval:  DefaultProgressInterval,
		newTicker: newTimeTicker,
		params:    model.DefaultParameters(),
		task:      &model.Submission{Status: model.SubmissionStatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}

	// selection changes affect CanSubmit
	store.SetChangeCallback(c.notifyUpdate)
	return c
}

// SetUpdateCallback sets the callback invoked with a fresh State after
// every change
func (c *Controller) SetUpdateCallback(callback func(State)) {
	c.mu.Lock()
	c.onUpdate = callback
	c.mu.Unlock()
}

// Store returns the selection store the controller submits from
func (c *Controller) Store() *selection.Store {
	return c.store
}

// Holder returns the result holder
func (c *Controller) Holder() *result.Holder {
	return c.holder
}

// Parameters returns the current submission parameters
func (c *Controller) Parameters() model.SubmissionParameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetParameters replaces the submission parameters, clamped to range.
// A pending submission keeps the parameters it was started with.
func (c *Controller) SetParameters(params model.SubmissionParameters) {
	c.mu.Lock()
	c.params = params.Clamped()
	c.mu.Unlock()
	c.notifyUpdate()
}

// State returns a snapshot of the controller
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// CanSubmit reports whether a target and tiles are selected and nothing
// is pending
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

// Submit validates the selection and starts a request. Validation errors
// are returned synchronously and recorded as the current error; no request
// is sent. Transport outcomes are reported through State.
func (c *Controller) Submit(ctx context.Context) (*model.Submission, error) {
	c.mu.Lock()
	if c.task.Status.IsActive() {
		c.mu.Unlock()
		return nil, ErrSubmissionPending
	}

	snapshot := c.store.Snapshot()
	if err := validate(snapshot.Target, snapshot.Tiles); err != nil {
		now := time.Now()
		c.task = &model.Submission{
			Status:     model.SubmissionStatusFailed,
			Percent:    model.ProgressIdle,
			LastError:  ErrorMessage(err),
			ErrorKind:  ClassifyError(err),
			Parameters: c.params,
			StartedAt:  now,
			FinishedAt: now,
		}
		c.mu.Unlock()

		c.logger.Warning(componentName, "submission rejected", map[string]interface{}{
			"reason": ClassifyError(err).String(),
		})
		c.emit()
		return nil, err
	}

	task := &model.Submission{
		ID:         generateSubmissionID(),
		Status:     model.SubmissionStatusPending,
		Percent:    model.ProgressAccepted,
		Parameters: c.params,
		TileMode:   snapshot.Tiles.Kind(),
		TileCount:  snapshot.Tiles.Len(),
		StartedAt:  time.Now(),
	}
	runCtx, cancel := context.WithCancel(ctx)
	ticker := c.newTicker(c.interval)

	c.task = task
	c.cancel = cancel
	c.ticker = ticker
	c.holder.Clear()
	c.wg.Add(1)
	taskCopy := *task
	c.mu.Unlock()

	c.logger.Info(componentName, "submission accepted", map[string]interface{}{
		"submission_id": task.ID,
		"tile_mode":     task.TileMode.String(),
		"tiles":         task.TileCount,
		"tile_size":     task.Parameters.TileSize,
		"blend":         task.Parameters.Blend,
		"max_width":     task.Parameters.MaxWidth,
	})
	c.emit()

	go c.run(runCtx, task, ticker, snapshot)

	return &taskCopy, nil
}

// Cancel aborts the pending submission. It reports whether anything was
// cancelled. Cancellation is not an error: no message is recorded and a
// new submission may start immediately.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	task := c.task
	if !task.Status.IsActive() {
		c.mu.Unlock()
		return false
	}
	c.releaseLocked()
	task.Status = model.SubmissionStatusCancelled
	task.Percent = model.ProgressIdle
	task.LastError = ""
	task.ErrorKind = model.ErrorKindNone
	task.FinishedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info(componentName, "submission cancelled", map[string]interface{}{
		"submission_id": task.ID,
		"elapsed":       task.GetElapsedString(task.FinishedAt),
	})
	c.emit()
	return true
}

// Reset cancels any pending submission, clears the selection, releases the
// result and forgets the last error
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.task.Status.IsActive() {
		c.releaseLocked()
		c.task.Status = model.SubmissionStatusCancelled
		c.task.FinishedAt = time.Now()
	}
	c.task = &model.Submission{Status: model.SubmissionStatusIdle}
	c.holder.Clear()
	c.mu.Unlock()

	c.store.Reset()
	c.logger.Info(componentName, "reset", nil)
	c.notifyUpdate()
}

// Close cancels any pending submission, waits for it to wind down and
// releases the result
func (c *Controller) Close() {
	c.Cancel()
	c.wg.Wait()
	c.holder.Clear()
}

// Wait blocks until no submission goroutine is running
func (c *Controller) Wait() {
	c.wg.Wait()
}

// run waits for the response while advancing simulated progress. Every
// mutation first checks that task is still the pending submission, so a
// response arriving after Cancel or Reset changes nothing.
func (c *Controller) run(ctx context.Context, task *model.Submission, ticker Ticker, snapshot selection.Snapshot) {
	defer c.wg.Done()

	type outcome struct {
		res *client.Result
		err error
	}
	responses := make(chan outcome, 1)
	go func() {
		res, err := c.builder.BuildMosaic(ctx, snapshot.Target, snapshot.Tiles, task.Parameters)
		responses <- outcome{res: res, err: err}
	}()

	for {
		select {
		case <-ticker.C():
			if !c.advanceProgress(task) {
				// cancelled; the response is still drained below
				ticker = stoppedTicker{}
			}
		case out := <-responses:
			c.complete(task, out.res, out.err)
			return
		}
	}
}

func (c *Controller) advanceProgress(task *model.Submission) bool {
	c.mu.Lock()
	if c.task != task || !task.Status.IsActive() {
		c.mu.Unlock()
		return false
	}
	task.Percent = model.NextSimulatedProgress(task.Percent)
	c.mu.Unlock()

	c.emit()
	return true
}

func (c *Controller) complete(task *model.Submission, res *client.Result, err error) {
	c.mu.Lock()
	if c.task != task || !task.Status.IsActive() {
		c.mu.Unlock()
		c.logger.Debug(componentName, "late response ignored", map[string]interface{}{
			"submission_id": task.ID,
		})
		return
	}
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if receivedResponse(res, err) {
		task.Percent = model.ProgressResponse
		c.mu.Unlock()
		c.emit()

		c.mu.Lock()
		if c.task != task || !task.Status.IsActive() {
			c.mu.Unlock()
			return
		}
	}

	if err == nil && res == nil {
		err = errors.New(UnknownErrorMessage)
	}
	var artifact *result.Artifact
	if err == nil {
		artifact, err = c.holder.Set(res.Data, res.ContentType)
		if err != nil {
			err = fmt.Errorf("store result: %w", err)
		}
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	task.FinishedAt = time.Now()

	fields := map[string]interface{}{
		"submission_id": task.ID,
		"elapsed":       task.GetElapsedString(task.FinishedAt),
	}
	switch {
	case err == nil:
		task.Status = model.SubmissionStatusSucceeded
		task.Percent = model.ProgressComplete
		fields["artifact_id"] = artifact.ID
		fields["bytes"] = artifact.Size
		c.logger.Info(componentName, "submission succeeded", fields)
	case errors.Is(err, context.Canceled):
		task.Status = model.SubmissionStatusCancelled
		task.Percent = model.ProgressIdle
		c.logger.Info(componentName, "submission cancelled", fields)
	default:
		task.Status = model.SubmissionStatusFailed
		task.Percent = model.ProgressIdle
		task.LastError = ErrorMessage(err)
		task.ErrorKind = ClassifyError(err)
		var svcErr *client.ServiceError
		if errors.As(err, &svcErr) {
			fields["status_code"] = svcErr.StatusCode
		}
		c.logger.Error(componentName, err, fields)
	}
	c.mu.Unlock()

	c.emit()
}

// receivedResponse reports whether the service answered at all. Transport
// failures and cancellation never reach the response milestone.
func receivedResponse(res *client.Result, err error) bool {
	if res != nil {
		return true
	}
	var svcErr *client.ServiceError
	return errors.As(err, &svcErr)
}

// releaseLocked stops the ticker and invalidates the request token
func (c *Controller) releaseLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) canSubmitLocked() bool {
	return !c.task.Status.IsActive() && c.store.Ready()
}

func (c *Controller) stateLocked() State {
	return State{
		SubmissionID: c.task.ID,
		Status:       c.task.Status,
		Progress:     c.task.Percent,
		LastError:    c.task.LastError,
		ErrorKind:    c.task.ErrorKind,
		Artifact:     c.holder.Current(),
		CanSubmit:    c.canSubmitLocked(),
		Parameters:   c.params,
		StartedAt:    c.task.StartedAt,
		FinishedAt:   c.task.FinishedAt,
	}
}

// notifyUpdate emits the current state
func (c *Controller) notifyUpdate() {
	c.emit()
}

// emit delivers the current state to the update callback. Captures and
// deliveries are serialized by emitMu, so a slow callback can never be
// followed by an older state than the one the controller has moved on to.
func (c *Controller) emit() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	callback := c.onUpdate
	state := c.stateLocked()
	c.mu.Unlock()
	if callback != nil {
		callback(state)
	}
}

// stoppedTicker never fires
type stoppedTicker struct{}

func (stoppedTicker) C() <-chan time.Time { return nil }
func (stoppedTicker) Stop()               {}

// generateSubmissionID generates a unique, time-ordered submission ID
func generateSubmissionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("submission-%d", time.Now().UnixNano())
	}
	return id.String()
}
