// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"context"
	"sync"

	loggerinternal "github.com/zeeql/pgadaptor/internal/logger"
)

// Adaptor is the entry point for a PostgreSQL database. It opens channels
// through its Pool and reflects the database model.
type Adaptor struct {
	// ConnectString is a URL or keyword/value connect string.
	ConnectString string
	// Options are applied to every channel the adaptor opens.
	Options ChannelOptions
	// Pool defaults to opening a new connection per channel.
	Pool Pool
	// Model is the model used by clients of the adaptor, if any.
	Model *Model

	fallbackOnce sync.Once
	fallback     Pool
}

// NewAdaptor creates an adaptor for connectString.
func NewAdaptor(connectString string, opts ChannelOptions) *Adaptor {
	return &Adaptor{
		ConnectString: connectString,
		Options:       opts,
		Pool:          &noPool{connectString: connectString, opts: opts},
	}
}

// NewAdaptorWithConfig creates an adaptor from cfg. The client configuration
// file, if one is found, is applied to the default logger first.
func NewAdaptorWithConfig(cfg *Config) (*Adaptor, error) {
	if err := initClientLogging(cfg.ClientConfigFile); err != nil {
		return nil, err
	}
	return NewAdaptor(cfg.DSN(), ChannelOptions{LogSQL: cfg.LogSQL}), nil
}

// pool returns Pool, or a noPool for adaptors built without NewAdaptor.
// Pool itself is never written here.
func (a *Adaptor) pool() Pool {
	if a.Pool != nil {
		return a.Pool
	}
	a.fallbackOnce.Do(func() {
		a.fallback = &noPool{connectString: a.ConnectString, opts: a.Options}
	})
	return a.fallback
}

// OpenChannel acquires a channel from the pool. Callers hand it back with
// ReleaseChannel.
func (a *Adaptor) OpenChannel(ctx context.Context) (*Channel, error) {
	return a.pool().Acquire(ctx)
}

// ReleaseChannel returns ch to the pool.
func (a *Adaptor) ReleaseChannel(ch *Channel) {
	a.pool().Release(ch)
}

// FetchModel reflects all visible tables on a temporary channel.
func (a *Adaptor) FetchModel(ctx context.Context) (*Model, error) {
	ch, err := a.OpenChannel(ctx)
	if err != nil {
		return nil, err
	}
	defer a.ReleaseChannel(ch)
	return NewModelFetch(ch).FetchModel(ctx)
}

// FetchModelTag computes the schema fingerprint on a temporary channel.
func (a *Adaptor) FetchModelTag(ctx context.Context) (ModelTag, error) {
	ch, err := a.OpenChannel(ctx)
	if err != nil {
		return ModelTag{}, err
	}
	defer a.ReleaseChannel(ch)
	return NewModelFetch(ch).FetchModelTag(ctx)
}

func (a *Adaptor) String() string {
	s := "<PostgreSQLAdaptor: " + loggerinternal.MaskSecrets(a.ConnectString)
	if a.Model != nil {
		s += " has-model"
	}
	return s + ">"
}
