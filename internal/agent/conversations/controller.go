package conversations

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nekochat-companion/server/internal/agent/model"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

var (
	// ErrClosed is returned by calls made after Close (or after the Start
	// context was cancelled).
	ErrClosed = errors.New("conversation controller closed")
	// ErrNotStarted is returned by calls made before Start.
	ErrNotStarted = errors.New("conversation controller not started")
)

// RuleRunner produces a reply from the rule table.
type RuleRunner interface {
	Reply(ctx context.Context, message string) (model.RuleReply, error)
}

// Backend is the generation service as the controller sees it. Neither
// call returns an error: failures are folded into false or sentinel text.
// The backend keeps no readiness of its own; the controller passes back
// the model id a successful probe matched.
type Backend interface {
	CheckAvailability(ctx context.Context, modelName string) (matched string, ok bool)
	Generate(ctx context.Context, modelName, userPrompt string) string
}

// EventSink receives a copy of every emitted event.
type EventSink interface {
	Publish(ctx context.Context, ev model.Event) error
}

type Option func(*Controller)

// WithModel sets the model name the probe looks for.
func WithModel(name string) Option {
	return func(c *Controller) { c.modelName = name }
}

// WithBackendLabel sets the service name used in the connecting notice.
func WithBackendLabel(label string) Option {
	return func(c *Controller) { c.label = label }
}

// WithSink mirrors emitted events to sink.
func WithSink(sink EventSink) Option {
	return func(c *Controller) { c.sink = sink }
}

// Controller owns conversation mode and backend readiness. All of its
// mutable state is touched only by the loop goroutine; public methods and
// finished background calls reach it as closures over ops.
type Controller struct {
	cfg     model.ConversationConfig
	policy  model.OverlapPolicy
	rules   RuleRunner
	backend Backend
	sink    EventSink

	modelName string
	label     string

	ops    chan func()
	events chan model.Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lifeMu  sync.Mutex
	started atomic.Bool
	closed  atomic.Bool

	// loop-owned
	useBackend bool
	phase      model.Phase
	backendSt  model.BackendState
	probing    bool
	queue      []model.Turn
	display    *displayStage
}

// New validates cfg and builds a stopped controller.
func New(cfg model.ConversationConfig, rules RuleRunner, backend Backend, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rules == nil || backend == nil {
		return nil, errors.New("conversation controller requires a rule runner and a backend")
	}
	policy, _ := model.ParseOverlapPolicy(cfg.OverlapPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:       cfg,
		policy:    policy,
		rules:     rules,
		backend:   backend,
		modelName: model.DefaultModel,
		label:     "Ollama",
		ops:       make(chan func()),
		events:    make(chan model.Event, cfg.EventBuffer),
		ctx:       ctx,
		cancel:    cancel,
		phase:     model.PhaseRuleBased,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.display = newDisplayStage(cfg.ReplyDelayMin, cfg.ReplyDelayMax)
	return c, nil
}

// Start runs the owning loop until ctx is cancelled or Close is called,
// and schedules the welcome line.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}
	if c.started.Load() {
		return nil
	}
	c.started.Store(true)

	c.display.push(time.Now().Add(c.cfg.WelcomeDelay), model.Event{
		Kind:   model.EventReply,
		Text:   NoticeWelcome,
		Source: model.SourceSystem,
	})

	stop := context.AfterFunc(ctx, c.cancel)
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		defer stop()
		c.loop()
	}()
	go func() {
		defer c.wg.Done()
		c.runDisplay()
	}()

	logx.Info().Str("policy", string(c.policy)).Str("model", c.modelName).Msg("Conversation controller started")
	return nil
}

// Close cancels in-flight calls, stops the loop and drops replies still
// waiting in the display queue, then closes the events channel. Safe to
// call more than once.
func (c *Controller) Close() {
	c.lifeMu.Lock()
	if c.closed.Load() {
		c.lifeMu.Unlock()
		return
	}
	c.closed.Store(true)
	c.lifeMu.Unlock()

	c.cancel()
	c.wg.Wait()
	close(c.events)
	logx.Info().Msg("Conversation controller closed")
}

// Events is the display channel. It is closed by Close.
func (c *Controller) Events() <-chan model.Event {
	return c.events
}

// SetMode turns backend mode on or off.
func (c *Controller) SetMode(useBackend bool) error {
	return c.do(func() { c.setMode(useBackend) })
}

// Submit hands one user message to the loop and returns without waiting
// for the reply. Blank input is ignored.
func (c *Controller) Submit(text string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	turn := model.NewTurn(text)
	if turn.Text == "" {
		return nil
	}
	return c.do(func() { c.handleTurn(turn) })
}

// State returns a copy of the loop-owned state.
func (c *Controller) State(ctx context.Context) (model.Snapshot, error) {
	out := make(chan model.Snapshot, 1)
	if err := c.do(func() { out <- c.snapshot() }); err != nil {
		return model.Snapshot{}, err
	}
	select {
	case s := <-out:
		return s, nil
	case <-ctx.Done():
		return model.Snapshot{}, ctx.Err()
	case <-c.ctx.Done():
		return model.Snapshot{}, ErrClosed
	}
}

// do sends op to the loop. It fails once the controller stops.
func (c *Controller) do(op func()) error {
	if !c.started.Load() {
		if c.closed.Load() {
			return ErrClosed
		}
		return ErrNotStarted
	}
	select {
	case c.ops <- op:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	}
}

// report is how background goroutines hand results back. Results that
// arrive after shutdown are dropped.
func (c *Controller) report(op func()) {
	select {
	case c.ops <- op:
	case <-c.ctx.Done():
	}
}

func (c *Controller) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case op := <-c.ops:
			op()
		}
	}
}

// ================ loop-only methods ================

func (c *Controller) setMode(on bool) {
	if !on {
		c.useBackend = false
		c.phase = model.PhaseRuleBased
		logx.Info().Str("phase", string(c.phase)).Msg("Backend mode off")
		c.reply("", NoticeBackendOff, model.SourceSystem)
		c.drainQueue()
		return
	}

	c.useBackend = true
	c.reply("", NoticeBackendOn, model.SourceSystem)
	if c.backendSt.Ready {
		c.phase = model.PhaseBackendReady
	} else {
		c.phase = model.PhaseBackendRequested
		if !c.probing {
			c.reply("", connectingNotice(c.label), model.SourceSystem)
			c.startProbe()
		}
	}
	logx.Info().Str("phase", string(c.phase)).Msg("Backend mode on")
}

func (c *Controller) startProbe() {
	c.probing = true
	name := c.modelName
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		matched, ok := c.backend.CheckAvailability(c.ctx, name)
		c.report(func() { c.probed(matched, ok) })
	}()
}

func (c *Controller) probed(matched string, ok bool) {
	c.probing = false
	c.backendSt.Ready = ok
	c.backendSt.Model = ""
	if ok {
		c.backendSt.Model = matched
	}
	c.emitNow(model.Event{Kind: model.EventReadiness, Success: ok, Model: c.modelName})

	if ok {
		if c.useBackend {
			c.phase = model.PhaseBackendReady
		}
		logx.Info().Str("model", c.modelName).Str("matched", matched).Str("phase", string(c.phase)).Msg("Backend ready")
		c.reply("", NoticeLoadSuccess, model.SourceSystem)
		return
	}

	c.useBackend = false
	c.phase = model.PhaseBackendFailed
	logx.Warn().Str("model", c.modelName).Str("phase", string(c.phase)).Msg("Backend load failed, falling back to rules")
	c.reply("", NoticeLoadFailed, model.SourceSystem)
	c.drainQueue()
}

func (c *Controller) handleTurn(turn model.Turn) {
	if c.useBackend && c.backendSt.Ready {
		c.submitBackend(turn)
		return
	}
	c.replyByRules(turn)
}

func (c *Controller) replyByRules(turn model.Turn) {
	out, err := c.rules.Reply(c.ctx, turn.Text)
	if err != nil {
		logx.Error().Err(err).Str("turn_id", turn.ID).Msg("Rule reply failed")
		return
	}
	logx.Debug().Str("turn_id", turn.ID).Str("category", string(out.Category)).Msg("Rule reply")
	c.reply(turn.ID, out.Text, model.SourceRule)
}

func (c *Controller) submitBackend(turn model.Turn) {
	if !c.backendSt.Pending {
		c.dispatch(turn)
		return
	}
	if c.policy == model.OverlapReject || len(c.queue) >= c.cfg.QueueSize {
		logx.Debug().Str("turn_id", turn.ID).Int("queued", len(c.queue)).Msg("Backend busy")
		c.reply(turn.ID, NoticeBusy, model.SourceSystem)
		return
	}
	c.queue = append(c.queue, turn)
}

func (c *Controller) dispatch(turn model.Turn) {
	c.backendSt.Pending = true
	modelName := c.backendSt.Model
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		text := c.backend.Generate(c.ctx, modelName, turn.Text)
		c.report(func() { c.generated(turn, text) })
	}()
}

func (c *Controller) generated(turn model.Turn, text string) {
	c.backendSt.Pending = false
	logx.Debug().Str("turn_id", turn.ID).Str("model", c.modelName).Msg("Backend reply")
	c.reply(turn.ID, text, model.SourceBackend)

	if len(c.queue) == 0 {
		return
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	c.handleTurn(next)
}

// drainQueue answers every waiting turn from the rules once backend mode
// is no longer usable.
func (c *Controller) drainQueue() {
	waiting := c.queue
	c.queue = nil
	for _, turn := range waiting {
		c.replyByRules(turn)
	}
}

func (c *Controller) snapshot() model.Snapshot {
	return model.Snapshot{
		Phase:      c.phase,
		UseBackend: c.useBackend,
		Probing:    c.probing,
		Backend:    c.backendSt,
		Queued:     len(c.queue),
		Model:      c.modelName,
	}
}
