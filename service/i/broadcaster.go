package i

import "github.com/beka-birhanu/vinom-territory-server/protocol"

// Broadcaster delivers events to players by identifier.
type Broadcaster interface {
	// Deliver queues an event for a player. It must never block.
	Deliver(playerID string, ev protocol.Event)
}

// Sink writes events to one player's transport.
type Sink interface {
	Send(ev protocol.Event) error
}

// Router binds players to the sink of the transport they are connected on.
type Router interface {
	Broadcaster
	Attach(playerID string, sink Sink)
	Detach(playerID string)
}
