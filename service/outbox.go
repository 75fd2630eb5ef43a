package service

import (
	"fmt"
	"sync"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/beka-birhanu/vinom-territory-server/protocol"
	"github.com/beka-birhanu/vinom-territory-server/service/i"
)

const defaultMailboxSize = 64

// Outbox routes events to players' transports. Each player has its own
// mailbox drained by its own goroutine, so a slow transport only delays
// its own player.
type Outbox struct {
	mailboxes map[string]*mailbox
	size      int
	logger    general_i.Logger
	sync.RWMutex
}

type mailbox struct {
	sink   i.Sink
	events chan protocol.Event
	done   chan struct{}
}

// NewOutbox creates an outbox whose mailboxes hold size events.
func NewOutbox(size int, logger general_i.Logger) *Outbox {
	if size <= 0 {
		size = defaultMailboxSize
	}
	return &Outbox{
		mailboxes: make(map[string]*mailbox),
		size:      size,
		logger:    logger,
	}
}

// Attach routes the player's events to sink, replacing any previous sink.
func (o *Outbox) Attach(playerID string, sink i.Sink) {
	mb := &mailbox{
		sink:   sink,
		events: make(chan protocol.Event, o.size),
		done:   make(chan struct{}),
	}

	o.Lock()
	old := o.mailboxes[playerID]
	o.mailboxes[playerID] = mb
	o.Unlock()

	if old != nil {
		close(old.done)
	}
	go o.drain(playerID, mb)
}

// Detach stops delivery to the player. Queued events are discarded.
func (o *Outbox) Detach(playerID string) {
	o.Lock()
	mb, ok := o.mailboxes[playerID]
	delete(o.mailboxes, playerID)
	o.Unlock()

	if ok {
		close(mb.done)
	}
}

// Deliver queues an event without blocking. Events for unknown players and
// events that do not fit the mailbox are dropped.
func (o *Outbox) Deliver(playerID string, ev protocol.Event) {
	o.RLock()
	defer o.RUnlock()

	mb, ok := o.mailboxes[playerID]
	if !ok {
		return
	}
	select {
	case mb.events <- ev:
	default:
		o.logger.Warning(fmt.Sprintf("mailbox full, dropped %s for player: %s", ev.Type(), playerID))
	}
}

// Close detaches every player.
func (o *Outbox) Close() {
	o.Lock()
	mailboxes := o.mailboxes
	o.mailboxes = make(map[string]*mailbox)
	o.Unlock()

	for _, mb := range mailboxes {
		close(mb.done)
	}
}

func (o *Outbox) drain(playerID string, mb *mailbox) {
	for {
		select {
		case <-mb.done:
			o.flush(playerID, mb)
			return
		case ev := <-mb.events:
			o.send(playerID, mb, ev)
		}
	}
}

// flush hands over what was queued before the mailbox was closed, so a
// final game state is not lost when the player is detached right after it.
func (o *Outbox) flush(playerID string, mb *mailbox) {
	for {
		select {
		case ev := <-mb.events:
			o.send(playerID, mb, ev)
		default:
			return
		}
	}
}

func (o *Outbox) send(playerID string, mb *mailbox, ev protocol.Event) {
	if err := mb.sink.Send(ev); err != nil {
		o.logger.Warning(fmt.Sprintf("delivering %s to player %s: %s", ev.Type(), playerID, err))
	}
}
