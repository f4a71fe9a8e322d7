// Copyright (c) 2017-2022 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"context"
	"errors"
)

type txCommand int

const (
	begin txCommand = iota
	commit
	rollback
)

func (cmd txCommand) string() (txStr string, err error) {
	switch cmd {
	case begin:
		return "BEGIN TRANSACTION", nil
	case commit:
		return "COMMIT TRANSACTION", nil
	case rollback:
		return "ROLLBACK TRANSACTION", nil
	}
	return "", errors.New("unsupported transaction command")
}

// IsTransactionInProgress reports whether Begin succeeded and neither Commit
// nor Rollback was called since.
func (ch *Channel) IsTransactionInProgress() bool {
	return ch.txInProgress
}

// Begin starts a transaction. It fails with ErrTransactionInProgress, without
// talking to the server, if one is already active.
func (ch *Channel) Begin(ctx context.Context) error {
	if ch.txInProgress {
		return ErrTransactionInProgress
	}
	if err := ch.execTxCommand(ctx, begin); err != nil {
		return err
	}
	ch.txInProgress = true
	return nil
}

// Commit commits the current transaction. The channel is considered idle
// afterwards even if COMMIT fails.
func (ch *Channel) Commit(ctx context.Context) error {
	ch.txInProgress = false
	return ch.execTxCommand(ctx, commit)
}

// Rollback aborts the current transaction. The channel is considered idle
// afterwards even if ROLLBACK fails.
func (ch *Channel) Rollback(ctx context.Context) error {
	ch.txInProgress = false
	return ch.execTxCommand(ctx, rollback)
}

func (ch *Channel) execTxCommand(ctx context.Context, command txCommand) error {
	txStr, err := command.string()
	if err != nil {
		return err
	}
	_, err = ch.PerformSQL(ctx, txStr)
	return err
}
