package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the workflow controller's current position in the two-step scan
// protocol.
type State int

const (
	// StateIdle means no scanning is in progress; the operator has not
	// started, or has cancelled.
	StateIdle State = iota
	// StateAwaitingFirst waits for the subject scan (the book).
	StateAwaitingFirst
	// StateAwaitingSecond waits for the second scan (the borrower badge).
	StateAwaitingSecond
	// StateResolving is the window where the record service call is in
	// flight; the decode source is stopped.
	StateResolving
	// StateError is the transient cooldown after a failed cycle before
	// scanning resumes automatically.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirst:
		return "awaiting_first"
	case StateAwaitingSecond:
		return "awaiting_second"
	case StateResolving:
		return "resolving"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Action is what the second scan will mean, decided by the book's status
// before that scan happens.
type Action int

const (
	ActionNone Action = iota
	ActionCheckout
	ActionReturn
)

// Config carries the workflow timing knobs. SettleDelay gives the decode
// source time to fully release and reacquire between steps; Cooldown is how
// long a failure stays on screen before scanning restarts.
type Config struct {
	SettleDelay    time.Duration
	Cooldown       time.Duration
	RequestTimeout time.Duration
	DueDays        int
	Constraints    Constraints
}

var ErrNotIdle = errors.New("controller already started")

// Controller owns the two-step scan protocol: identify the book, resolve
// whether the cycle is a checkout or a return, identify the borrower, then
// call the record service. The decode source is always stopped before any
// network call and only restarted once the outcome is known, so two cycles
// never overlap.
type Controller struct {
	cfg  Config
	src  DecodeSource
	svc  RecordService
	sink StatusSink
	seq  *Sequencer
	log  *slog.Logger

	mu      sync.Mutex
	state   State
	action  Action
	subject *BookInfo
	cycleID string
	// gen is bumped by Stop and guards every timer fire and every network
	// completion: a stale callback from a cancelled cycle sees a mismatched
	// generation and does nothing.
	gen   uint64
	timer *time.Timer
}

func NewController(cfg Config, src DecodeSource, svc RecordService, sink StatusSink, log *slog.Logger) *Controller {
	return &Controller{
		cfg:   cfg,
		src:   src,
		svc:   svc,
		sink:  sink,
		seq:   NewSequencer(),
		log:   log,
		state: StateIdle,
	}
}

// State reports the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start activates scanning: Idle → AwaitingFirst.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	c.gen++
	c.resetCycleLocked()
	c.setStateLocked(StateAwaitingFirst)
	c.mu.Unlock()

	if err := c.src.Start(context.Background(), c.cfg.Constraints, c.onDecode, c.onSourceError); err != nil {
		c.mu.Lock()
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		c.sink.Failure(DescribeCameraError(err))
		return err
	}

	c.sink.Prompt("scan a book")
	return nil
}

// Stop cancels the current cycle from any state: the pending subject is
// discarded, any settle or cooldown timer is interrupted so no stale restart
// fires, and the decode source is stopped.
func (c *Controller) Stop() error {
	c.mu.Lock()
	c.gen++
	c.stopTimerLocked()
	c.resetCycleLocked()
	wasIdle := c.state == StateIdle
	c.setStateLocked(StateIdle)
	c.mu.Unlock()

	if wasIdle {
		return nil
	}
	err := c.src.Stop()
	c.src.Clear()
	return err
}

// onDecode is wired into the decode source; it receives raw events,
// duplicates included.
func (c *Controller) onDecode(text string) {
	c.mu.Lock()
	switch c.state {
	case StateAwaitingFirst:
		c.handleFirstLocked(text)
	case StateAwaitingSecond:
		c.handleSecondLocked(text)
	default:
		// Scans that land during resolving or cooldown are dropped.
		c.mu.Unlock()
	}
}

// onSourceError surfaces camera trouble to the operator. It never changes
// workflow state; every path still converges on AwaitingFirst.
func (c *Controller) onSourceError(err error) {
	c.log.Warn("decode source error", "error", err)
	c.sink.Failure(DescribeCameraError(err))
}

// handleFirstLocked runs with c.mu held and releases it. The first accepted
// code becomes the subject; the book is resolved before the second scan so
// the controller already knows whether a checkout or a return is underway.
func (c *Controller) handleFirstLocked(text string) {
	code, ok := c.seq.Accept(text)
	if !ok {
		c.mu.Unlock()
		return
	}

	gen := c.gen
	c.cycleID = uuid.NewString()
	cycleID := c.cycleID
	c.setStateLocked(StateAwaitingSecond)
	c.mu.Unlock()

	if err := c.src.Stop(); err != nil {
		c.log.Warn("decode source stop failed", "cycle_id", cycleID, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	info, err := c.svc.BookByCode(ctx, string(code))
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	if err != nil {
		c.failLocked(gen, requestErrorMessage(err))
		return
	}

	c.subject = info
	if info.Status == BookStatusCheckedOut {
		c.action = ActionReturn
		c.sink.Prompt(fmt.Sprintf("returning %q (checked out to %s), scan the borrower badge", info.Title, info.CheckedOutTo))
	} else {
		c.action = ActionCheckout
		c.sink.Prompt(fmt.Sprintf("checking out %q, scan the borrower badge", info.Title))
	}

	c.log.Info("subject resolved",
		"cycle_id", cycleID,
		"book_code", info.Code,
		"action", c.action)

	// The same literal code must be scannable again in the next step.
	c.seq.Reset()
	c.scheduleLocked(c.cfg.SettleDelay, func() { c.resumeScanning(gen) })
}

// handleSecondLocked runs with c.mu held and releases it.
func (c *Controller) handleSecondLocked(text string) {
	code, ok := c.seq.Accept(text)
	if !ok {
		c.mu.Unlock()
		return
	}

	gen := c.gen
	subject := c.subject
	action := c.action
	cycleID := c.cycleID
	c.setStateLocked(StateResolving)
	c.mu.Unlock()

	if err := c.src.Stop(); err != nil {
		c.log.Warn("decode source stop failed", "cycle_id", cycleID, "error", err)
	}

	// The server does not verify the returning borrower; that check lives
	// here, against the badge recorded on the active checkout.
	if action == ActionReturn && subject.CheckedOutToCode != "" && string(code) != subject.CheckedOutToCode {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			return
		}
		c.failLocked(gen, fmt.Sprintf("wrong badge: %q is checked out to %s", subject.Title, subject.CheckedOutTo))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	defer cancel()

	var resultMsg string
	var err error
	switch action {
	case ActionCheckout:
		var r *CheckoutReceipt
		r, err = c.svc.Checkout(ctx, subject.Code, string(code), c.cfg.DueDays)
		if err == nil {
			resultMsg = fmt.Sprintf("%q checked out to %s, due %s", r.BookTitle, r.UserName, r.DueDate.Format("Jan 2, 2006"))
		}
	case ActionReturn:
		var r *ReturnReceipt
		r, err = c.svc.Return(ctx, subject.Code)
		if err == nil {
			resultMsg = fmt.Sprintf("%q returned", r.BookTitle)
		}
	default:
		err = errors.New("no action resolved for cycle")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	if err != nil {
		c.log.Warn("record service call failed", "cycle_id", cycleID, "error", err)
		c.failLocked(gen, requestErrorMessage(err))
		return
	}

	c.log.Info("cycle completed", "cycle_id", cycleID, "action", action)
	c.sink.Success(resultMsg)
	c.beginNextCycleLocked(gen)
}

// failLocked presents the error, then schedules the cooldown after which
// scanning resumes automatically.
func (c *Controller) failLocked(gen uint64, msg string) {
	c.sink.Failure(msg)
	c.resetCycleLocked()
	c.setStateLocked(StateError)
	c.scheduleLocked(c.cfg.Cooldown, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen || c.state != StateError {
			return
		}
		c.beginNextCycleLocked(gen)
	})
}

// beginNextCycleLocked returns to AwaitingFirst and restarts the decode
// source. The restart happens off the lock so synchronous sources cannot
// deadlock by delivering an event during Start.
func (c *Controller) beginNextCycleLocked(gen uint64) {
	c.resetCycleLocked()
	c.setStateLocked(StateAwaitingFirst)
	go c.restartSource(gen)
}

func (c *Controller) restartSource(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateAwaitingFirst {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.src.Start(context.Background(), c.cfg.Constraints, c.onDecode, c.onSourceError); err != nil {
		c.sink.Failure(DescribeCameraError(err))
		return
	}
	c.sink.Prompt("scan a book")
}

// resumeScanning fires after the settle delay between the two steps.
func (c *Controller) resumeScanning(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateAwaitingSecond {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err := c.src.Start(context.Background(), c.cfg.Constraints, c.onDecode, c.onSourceError); err != nil {
		c.sink.Failure(DescribeCameraError(err))
	}
}

func (c *Controller) resetCycleLocked() {
	c.subject = nil
	c.action = ActionNone
	c.cycleID = ""
	c.seq.Reset()
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.sink.StateChanged(s)
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleLocked arms the single pending timer. The callback is expected to
// re-check the generation and state itself before acting.
func (c *Controller) scheduleLocked(d time.Duration, fn func()) {
	c.stopTimerLocked()
	c.timer = time.AfterFunc(d, fn)
}

// requestErrorMessage turns a record-service failure into operator text.
func requestErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "server did not respond in time"
	}
	return err.Error()
}
