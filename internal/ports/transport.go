package ports

import "github.com/bnema/copytrade-cli/internal/domain"

type Transport interface {
	Send(req domain.Request) error
	Connected() bool
}

// EventHandler receives decoded frames and the single disconnect notification
// of a connection.
type EventHandler interface {
	HandleEvent(ev domain.Event)
	HandleDisconnect(err error)
}
