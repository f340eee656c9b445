package mcvhost

import (
	"context"
	"errors"
)

var ErrNoListeners = errors.New("no listeners configured")

// ListenerInitializer starts serving a single listener.
type ListenerInitializer interface {
	InitListener(ctx context.Context, l *Listener) error
}

type ListenerInitFunc func(ctx context.Context, l *Listener) error

func (f ListenerInitFunc) InitListener(ctx context.Context, l *Listener) error {
	return f(ctx, l)
}

// Dispatch hands every listener of c to init in declaration order and
// returns the first error unchanged.
func Dispatch(ctx context.Context, c *Config, init ListenerInitializer) error {
	if c == nil || len(c.Listeners) == 0 {
		return ErrNoListeners
	}
	for _, l := range c.Listeners {
		err := init.InitListener(ctx, l)
		if err != nil {
			return err
		}
	}
	return nil
}
