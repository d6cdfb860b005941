// Package messaging turns evaluated power rolls into chat messages and
// journal records.
package messaging

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Taroc0/draw-steel/internal/journal"
	"github.com/Taroc0/draw-steel/internal/platform/random"
	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
	"github.com/Taroc0/draw-steel/internal/rules/roll"
)

// Chat message localization keys.
const (
	keyRollPosted  = "chat.roll.posted"
	keyRollPrivate = "chat.roll.private"
	keyRollTotal   = "chat.roll.total"
)

// Localizer resolves label keys to display text.
type Localizer interface {
	Localize(key string) string
}

// Message is one rendered chat entry for a roll.
type Message struct {
	RecordID string
	UserID   string
	Body     string
	Formula  string
	Tooltip  string
	Total    string
	Tier     string
	Modifier string
	Critical string
}

// Sink delivers chat messages to their transport.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogSink writes chat messages to the process log. It is the default
// delivery transport.
type LogSink struct{}

// Deliver implements Sink.
func (LogSink) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("chat %s: %s %s = %s", msg.UserID, msg.Body, msg.Formula, msg.Total)
	return nil
}

// Options configures a poster.
type Options struct {
	// Private redacts the roll in the chat message. The journal record
	// keeps the true values either way.
	Private bool
	// Sink overrides the delivery transport.
	Sink Sink
	// Now overrides the record clock. Tests use this for determinism.
	Now func() time.Time
}

// Poster persists evaluated rolls and delivers their chat messages. It
// satisfies the roll prompt's posting contract.
type Poster struct {
	store     journal.Store
	localizer Localizer
	sink      Sink
	private   bool
	now       func() time.Time
}

// NewPoster builds a poster over the given journal store. A nil store
// skips persistence; a nil localizer passes keys through unchanged.
func NewPoster(store journal.Store, localizer Localizer, opts Options) *Poster {
	sink := opts.Sink
	if sink == nil {
		sink = LogSink{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Poster{
		store:     store,
		localizer: localizer,
		sink:      sink,
		private:   opts.Private,
		now:       now,
	}
}

// PostRoll evaluates the roll if needed, appends it to the journal, and
// delivers the chat message.
func (p *Poster) PostRoll(ctx context.Context, pr *powerroll.PowerRoll) error {
	if pr == nil {
		return fmt.Errorf("roll is required")
	}

	rendered, err := pr.Render(ctx, roll.RenderOptions{Private: p.private})
	if err != nil {
		return fmt.Errorf("render roll: %w", err)
	}

	id, err := random.NewID()
	if err != nil {
		return fmt.Errorf("generate record id: %w", err)
	}

	if p.store != nil {
		total, _ := pr.Total()
		record := journal.Record{
			ID:       id,
			UserID:   rendered.UserID,
			Type:     pr.Config().Type,
			Formula:  pr.Formula(),
			Flavor:   pr.Flavor(),
			Total:    total,
			Tier:     pr.Tier(),
			NetBoon:  pr.NetBoon(),
			Critical: pr.Critical(),
			Nat20:    pr.Nat20(),
			Private:  p.private,
			RolledAt: p.now().UTC(),
		}
		if err := p.store.AppendRoll(ctx, record); err != nil {
			return fmt.Errorf("append roll record: %w", err)
		}
	}

	msg := Message{
		RecordID: id,
		UserID:   rendered.UserID,
		Body:     p.body(rendered.Flavor),
		Formula:  rendered.Formula,
		Tooltip:  rendered.Tooltip,
		Total:    rendered.Total,
		Tier:     rendered.Tier.Label,
		Modifier: rendered.Modifier.Mod,
		Critical: rendered.Critical,
	}
	if err := p.sink.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver chat message: %w", err)
	}
	return nil
}

func (p *Poster) body(flavor string) string {
	key := keyRollPosted
	if p.private {
		key = keyRollPrivate
	}
	body := p.localize(key)
	if flavor != "" {
		body = strings.TrimSpace(body + " " + flavor)
	}
	return body
}

func (p *Poster) localize(key string) string {
	if p.localizer == nil {
		return key
	}
	return p.localizer.Localize(key)
}

var _ powerroll.Poster = (*Poster)(nil)
