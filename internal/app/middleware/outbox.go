package middleware

import (
	"context"

	"pucisca/internal/app/commands"
	"pucisca/internal/app/outbox"
	"pucisca/internal/app/queries"
)

// OutboxFlush flushes box after every successful command and fails the
// command when the flush fails. Use it when box is durable.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

// OutboxFlushBestEffort flushes box after every successful command but only
// reports flush failures to onError. Use it when box is in memory: a failed
// delivery is already lost, and the command result is still valid.
func OutboxFlushBestEffort(box outbox.Outbox, onError func(ctx context.Context, err error)) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if ferr := box.Flush(ctx); ferr != nil && onError != nil {
				onError(ctx, ferr)
			}
			return res, nil
		})
	}
}

// QueryOutboxFlush flushes box after queries that recorded analytics events.
// A flush failure never fails the read.
func QueryOutboxFlush(box outbox.Outbox, onError func(ctx context.Context, err error)) QueryMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			res, err := next.Ask(ctx, q)
			if err != nil {
				return res, err
			}
			if ferr := box.Flush(ctx); ferr != nil && onError != nil {
				onError(ctx, ferr)
			}
			return res, nil
		})
	}
}
