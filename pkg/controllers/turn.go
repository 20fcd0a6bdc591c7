// Package controllers drives chat turns from user input to finalized history.
package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/killallgit/ada/pkg/chat"
	"github.com/killallgit/ada/pkg/decoder"
	"github.com/killallgit/ada/pkg/display"
	"github.com/killallgit/ada/pkg/events"
	"github.com/killallgit/ada/pkg/history"
	"github.com/killallgit/ada/pkg/logger"
	"github.com/killallgit/ada/pkg/provider"
	"github.com/killallgit/ada/pkg/stream"
	"github.com/killallgit/ada/pkg/transport"
)

var log = logger.WithComponent("controller")

var ErrTurnActive = errors.New("a response is still streaming")

// Selection supplies and stores the active "provider:model" selector.
type Selection interface {
	Selected() string
	Select(selector string) error
}

// StaticSelection is a Selection that lives only in memory.
type StaticSelection struct {
	Selector string
}

func (s *StaticSelection) Selected() string {
	return s.Selector
}

func (s *StaticSelection) Select(selector string) error {
	if _, err := provider.ParseSelector(selector); err != nil {
		return err
	}
	s.Selector = selector
	return nil
}

// Options wires a TurnController to its collaborators.
type Options struct {
	Sink      display.Sink
	Store     history.Store
	Session   *chat.Session
	Table     *transport.Table
	Bus       *events.Bus
	Selection Selection
	// SuppressEcho strips a repeat of the previous reply from the start of
	// the next one.
	SuppressEcho bool
}

// TurnController owns the single in-flight turn. Its methods must be called
// from the one loop goroutine that also drains Events. Cancelling the context
// given to NewTurnController stops a dispatch from anywhere.
type TurnController struct {
	ctx          context.Context
	sink         display.Sink
	store        history.Store
	session      *chat.Session
	table        *transport.Table
	bus          *events.Bus
	selection    Selection
	reconciler   *stream.Reconciler
	suppressEcho bool

	state     State
	stream    stream.State
	turnID    string
	topic     string
	decoder   decoder.Decoder
	sub       *events.Subscription
	cancel    context.CancelFunc
	lastFinal string
	lastErr   error
}

func NewTurnController(ctx context.Context, opts Options) *TurnController {
	if opts.Session == nil {
		opts.Session = chat.NewSession(nil, "", 0)
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus()
	}
	if opts.Selection == nil {
		opts.Selection = &StaticSelection{}
	}
	return &TurnController{
		ctx:          ctx,
		sink:         opts.Sink,
		store:        opts.Store,
		session:      opts.Session,
		table:        opts.Table,
		bus:          opts.Bus,
		selection:    opts.Selection,
		reconciler:   stream.NewReconciler(opts.Sink),
		suppressEcho: opts.SuppressEcho,
	}
}

func (c *TurnController) State() State {
	return c.state
}

// Events is the channel of the current turn, or nil when no turn is active.
func (c *TurnController) Events() <-chan events.Event {
	if c.sub == nil {
		return nil
	}
	return c.sub.C()
}

// Err is the error that ended the most recent turn, if any.
func (c *TurnController) Err() error {
	return c.lastErr
}

// Reply is the text accumulated so far in the current turn.
func (c *TurnController) Reply() string {
	return c.stream.Text.Current()
}

func (c *TurnController) Session() *chat.Session {
	return c.session
}

func (c *TurnController) Selected() string {
	return c.selection.Selected()
}

func (c *TurnController) Select(selector string) error {
	return c.selection.Select(selector)
}

// Replay shows the stored history on the sink.
func (c *TurnController) Replay() {
	display.Replay(c.sink, c.session.Messages())
}

// Submit starts a turn for input.
func (c *TurnController) Submit(input string) Outcome {
	text := strings.TrimSpace(input)
	if text == "" {
		return OutcomeIgnored
	}
	switch strings.ToLower(text) {
	case "exit", "quit":
		return OutcomeQuit
	}
	if c.state != StateIdle {
		log.Debug("submit rejected", "state", c.state)
		return OutcomeBusy
	}

	c.lastErr = nil
	c.session.Append(chat.NewUserMessage(text))
	c.sink.CreateMessage(display.SenderUser, text)
	c.sink.ScrollToLatest()
	c.persist()
	c.stream.Reset()

	selector := c.selection.Selected()
	sel, err := provider.ParseSelector(selector)
	if err != nil {
		c.fail(err)
		return OutcomeFailed
	}
	if c.table == nil {
		c.fail(fmt.Errorf("%w: %q", provider.ErrUnknownProvider, sel.Provider))
		return OutcomeFailed
	}
	entry, err := c.table.Lookup(sel.Provider)
	if err != nil {
		c.fail(err)
		return OutcomeFailed
	}

	c.turnID = uuid.NewString()
	c.topic = sel.Provider.String()
	c.decoder = entry.Decoder
	c.sub = c.bus.Subscribe(c.topic)
	c.state = StateSending

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	req := transport.Request{Model: sel.Model, Messages: c.session.Context()}
	go c.dispatch(ctx, entry.Dispatcher, req, c.topic, c.turnID)

	log.Info("turn started", "turn", c.turnID, "selector", sel.String(), "messages", len(req.Messages))
	return OutcomeSent
}

// dispatch runs on its own goroutine and only talks to the bus.
func (c *TurnController) dispatch(ctx context.Context, d transport.Dispatcher, req transport.Request, topic, turnID string) {
	err := d.Dispatch(ctx, req, func(raw string) {
		c.bus.Publish(events.Event{Topic: topic, TurnID: turnID, Kind: events.KindChunk, Raw: raw})
	})
	c.bus.Publish(events.Event{Topic: topic, TurnID: turnID, Kind: events.KindSettled, Err: err})
}

// HandleEvent applies one bus event to the current turn. Events from other
// turns are ignored.
func (c *TurnController) HandleEvent(ev events.Event) {
	if c.state == StateIdle || ev.TurnID != c.turnID {
		log.Debug("stale event ignored", "turn", ev.TurnID, "kind", ev.Kind)
		return
	}

	switch ev.Kind {
	case events.KindChunk:
		if c.state == StateSending {
			c.state = StateStreaming
		}
		res := c.decoder.Decode(ev.Raw, c.stream.Carry)
		c.stream.Carry = res.Carry
		c.apply(res)

	case events.KindSettled:
		if ev.Err != nil {
			c.fail(ev.Err)
			return
		}
		res := c.decoder.Flush(c.stream.Carry)
		c.stream.Carry = ""
		c.apply(res)
		c.Finalize()
	}
}

func (c *TurnController) apply(res decoder.Result) {
	if res.Text != "" {
		delta := res.Text
		if c.suppressEcho && c.stream.FirstDelta() {
			delta = stream.TrimEcho(c.lastFinal, delta)
		}
		c.stream.Append(delta)
		if _, err := c.reconciler.ReconcileIfGrown(c.stream.Text.Current(), &c.stream); err != nil {
			log.Warn("display update failed", "turn", c.turnID, "error", err)
		}
	}

	switch {
	case res.Err != nil:
		c.fail(res.Err)
	case res.Done:
		c.Finalize()
	}
}

// Finalize commits the accumulated reply to history and ends the turn. It
// is safe to call more than once.
func (c *TurnController) Finalize() {
	if c.state == StateIdle || c.stream.Finalized {
		return
	}
	c.state = StateFinalizing
	c.stream.Finalized = true

	text := strings.TrimSpace(c.stream.Text.Current())
	if text != "" {
		c.session.Append(chat.NewAssistantMessage(text))
		c.persist()
	} else if c.stream.Handle != nil {
		if err := c.sink.RemoveMessage(c.stream.Handle); err != nil {
			log.Warn("failed to remove empty reply", "error", err)
		}
	}
	c.lastFinal = text

	log.Info("turn finalized", "turn", c.turnID, "chars", len(text))
	c.endTurn()
}

// fail shows err, drops any partial reply and ends the turn. Nothing is
// retried.
func (c *TurnController) fail(err error) {
	log.Error("turn failed", "turn", c.turnID, "error", err)
	c.lastErr = err

	if c.stream.Handle != nil {
		if rmErr := c.sink.RemoveMessage(c.stream.Handle); rmErr != nil {
			log.Warn("failed to remove partial reply", "error", rmErr)
		}
	}
	c.sink.CreateMessage(display.SenderSystem, "Error: "+err.Error())
	c.sink.ScrollToLatest()
	c.endTurn()
}

func (c *TurnController) endTurn() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.sub != nil {
		c.bus.Unsubscribe(c.sub)
		c.sub = nil
	}
	c.stream.Reset()
	c.turnID = ""
	c.topic = ""
	c.decoder = nil
	c.state = StateIdle
}

// Clear empties the history, persists it and resets the display.
func (c *TurnController) Clear() error {
	if c.state != StateIdle {
		return ErrTurnActive
	}
	c.session.Clear()
	c.persist()
	c.sink.Clear()
	c.lastFinal = ""
	log.Info("history cleared")
	return nil
}

// Await handles events until the current turn ends. It is the loop used
// when there is no UI runtime to drive HandleEvent.
func (c *TurnController) Await(ctx context.Context) error {
	for c.state != StateIdle {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				c.Close()
				return errors.New("event stream closed")
			}
			c.HandleEvent(ev)
		case <-ctx.Done():
			c.Close()
			return ctx.Err()
		}
	}
	return nil
}

// Close abandons any turn in flight without saving partial text.
func (c *TurnController) Close() {
	if c.state != StateIdle {
		log.Info("turn abandoned", "turn", c.turnID)
	}
	c.endTurn()
}

// persist saves the history. A failure is shown but the in-memory history
// is kept.
func (c *TurnController) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.session.Messages()); err != nil {
		err = fmt.Errorf("failed to save chat history: %w", err)
		log.Error("persist failed", "error", err)
		c.sink.CreateMessage(display.SenderSystem, "Error: "+err.Error())
	}
}
