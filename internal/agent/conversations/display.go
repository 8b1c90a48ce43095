package conversations

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nekochat-companion/server/internal/agent/model"
	logx "github.com/nekochat-companion/server/pkg/logger"
)

type scheduledEvent struct {
	at time.Time
	ev model.Event
}

// displayStage is a FIFO of replies waiting out their "thinking" delay.
// One worker drains it, so events leave in the order they were scheduled.
type displayStage struct {
	min, max time.Duration

	mu      sync.Mutex
	items   []scheduledEvent
	lastDue time.Time
	wake    chan struct{}
}

func newDisplayStage(min, max time.Duration) *displayStage {
	return &displayStage{min: min, max: max, wake: make(chan struct{}, 1)}
}

// sample draws uniformly from [min, max].
func (d *displayStage) sample() time.Duration {
	span := d.max - d.min
	if span <= 0 {
		return d.min
	}
	return d.min + time.Duration(rand.Int64N(int64(span)+1))
}

// push queues ev to be shown at at, or at the previous item's due time if
// that is later.
func (d *displayStage) push(at time.Time, ev model.Event) {
	d.mu.Lock()
	if at.Before(d.lastDue) {
		at = d.lastDue
	}
	d.lastDue = at
	d.items = append(d.items, scheduledEvent{at: at, ev: ev})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *displayStage) pop() (scheduledEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return scheduledEvent{}, false
	}
	next := d.items[0]
	d.items = d.items[1:]
	return next, true
}

// reply schedules a reply event with a sampled delay.
func (c *Controller) reply(turnID, text string, source model.ReplySource) {
	c.display.push(time.Now().Add(c.display.sample()), model.Event{
		Kind:   model.EventReply,
		TurnID: turnID,
		Text:   text,
		Source: source,
	})
}

// runDisplay emits queued replies one at a time once each is due. Pending
// replies are dropped on shutdown.
func (c *Controller) runDisplay() {
	for {
		item, ok := c.display.pop()
		if !ok {
			select {
			case <-c.ctx.Done():
				return
			case <-c.display.wake:
				continue
			}
		}

		if wait := time.Until(item.at); wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-c.ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
		c.emit(item.ev)
	}
}

// emitNow sends ev without any delay, bypassing the display queue. Loop only.
func (c *Controller) emitNow(ev model.Event) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.emit(ev)
	}()
}

func (c *Controller) emit(ev model.Event) {
	ev.At = time.Now()
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
		return
	}

	if c.sink == nil {
		return
	}
	if err := c.sink.Publish(c.ctx, ev); err != nil {
		logx.Warn().Err(err).Str("turn_id", ev.TurnID).Str("kind", string(ev.Kind)).Msg("Failed to publish event")
	}
}
