package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"termchess/engine"
	"termchess/types"
)

// DefaultAIDelay is the pause between showing the human move and asking the
// engine for a reply.
const DefaultAIDelay = 300 * time.Millisecond

// Dispatcher runs fn on the goroutine that owns the session.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(fn func())

func (f DispatchFunc) Dispatch(fn func()) { f(fn) }

// Recorder persists the plies of a game.
type Recorder interface {
	AddMove(m PlayedMove) error
	SetResult(result string) error
	Close()
}

// ResultNoReply is recorded when the engine reports it has no move.
const ResultNoReply = "engine-no-reply"

// Controller sequences the validation and engine requests for a Session.
// Every method must be called on the dispatcher's goroutine.
type Controller struct {
	session   *Session
	svc       engine.MoveService
	dispatch  Dispatcher
	aiDelay   time.Duration
	onChange  func(Snapshot)
	newRecord func() (Recorder, error)
	rec       Recorder
	recorded  int
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	log       *zap.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithAIDelay overrides DefaultAIDelay.
func WithAIDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.aiDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = l
	}
}

// WithRecorder opens a new record for every game through newRecord.
func WithRecorder(newRecord func() (Recorder, error)) ControllerOption {
	return func(c *Controller) {
		c.newRecord = newRecord
	}
}

// OnChange registers a callback invoked after every visible state change.
func OnChange(fn func(Snapshot)) ControllerOption {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController creates a controller and starts a fresh game.
func NewController(svc engine.MoveService, d Dispatcher, opts ...ControllerOption) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		svc:      svc,
		dispatch: d,
		aiDelay:  DefaultAIDelay,
		ctx:      ctx,
		cancel:   cancel,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = NewSession(c.log.Named("session"))
	c.openRecord()
	c.notify()
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return c.session.Snapshot()
}

// Click forwards a click to the session and starts validation when it
// completes a move.
func (c *Controller) Click(sq types.Square) {
	m, ok := c.session.Click(sq)
	c.notify()
	if !ok {
		return
	}
	c.validate(c.session.Epoch(), c.session.Position(), m)
}

// Restart throws the current game away and starts from the initial position.
// A request still in flight completes but its result is discarded.
func (c *Controller) Restart() {
	c.log.Info("restart", zap.Stringer("phase", c.session.Phase()))
	c.closeRecord()
	c.session.Reset()
	c.openRecord()
	c.notify()
}

// Close stops outstanding requests and closes the record. Results arriving
// afterwards are dropped and no further changes are reported.
func (c *Controller) Close() {
	c.closed = true
	c.cancel()
	c.closeRecord()
}

func (c *Controller) validate(epoch uint64, position string, m types.Move) {
	go func() {
		v, err := c.svc.ValidateMove(c.ctx, position, m)
		c.dispatch.Dispatch(func() {
			c.onValidated(epoch, v, err)
		})
	}()
}

func (c *Controller) onValidated(epoch uint64, v engine.Validation, err error) {
	if c.closed {
		return
	}
	askAI := c.session.ApplyValidation(epoch, v, err)
	c.flushRecord()
	c.notify()
	if !askAI {
		return
	}
	// Let the human move show before the engine starts thinking.
	time.AfterFunc(c.aiDelay, func() {
		c.dispatch.Dispatch(func() {
			c.requestAI(epoch)
		})
	})
}

func (c *Controller) requestAI(epoch uint64) {
	if c.closed {
		return
	}
	position, ok := c.session.BeginAI(epoch)
	if !ok {
		return
	}
	go func() {
		r, err := c.svc.RequestMove(c.ctx, position)
		c.dispatch.Dispatch(func() {
			c.onReply(epoch, r, err)
		})
	}()
}

func (c *Controller) onReply(epoch uint64, r engine.Reply, err error) {
	if c.closed {
		return
	}
	c.session.ApplyAI(epoch, r, err)
	c.flushRecord()
	if c.session.GameOver() && c.rec != nil {
		if err := c.rec.SetResult(ResultNoReply); err != nil {
			c.log.Warn("record result", zap.Error(err))
		}
	}
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.session.Snapshot())
	}
}

func (c *Controller) openRecord() {
	c.recorded = 0
	if c.newRecord == nil {
		return
	}
	rec, err := c.newRecord()
	if err != nil {
		c.log.Warn("open game record", zap.Error(err))
		return
	}
	c.rec = rec
}

// flushRecord writes plies the record has not seen yet.
func (c *Controller) flushRecord() {
	history := c.session.History()
	if c.rec == nil {
		c.recorded = len(history)
		return
	}
	for _, m := range history[c.recorded:] {
		if err := c.rec.AddMove(m); err != nil {
			c.log.Warn("record move", zap.Int("ply", m.Ply), zap.Error(err))
		}
	}
	c.recorded = len(history)
}

func (c *Controller) closeRecord() {
	if c.rec == nil {
		return
	}
	c.rec.Close()
	c.rec = nil
}
