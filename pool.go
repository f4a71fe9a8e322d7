// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import "context"

// Pool hands out channels to an Adaptor. Implementations decide whether a
// released channel is kept for reuse or closed.
type Pool interface {
	Acquire(ctx context.Context) (*Channel, error)
	Release(ch *Channel)
}

// noPool opens a fresh channel on every Acquire and closes it on Release.
type noPool struct {
	connectString string
	opts          ChannelOptions
}

func (p *noPool) Acquire(ctx context.Context) (*Channel, error) {
	return OpenChannel(ctx, p.connectString, p.opts)
}

func (p *noPool) Release(ch *Channel) {
	if ch == nil {
		return
	}
	if err := ch.Close(); err != nil {
		logger.Debugf("error while closing released channel: %v", err)
	}
}
