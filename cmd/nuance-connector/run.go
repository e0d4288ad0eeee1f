package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeforequity-at/botium-connector-nuance/connector"
	"github.com/codeforequity-at/botium-connector-nuance/sink"
)

// run is one CLI dialog session: a connector delivering into a queue that
// is drained to the printer after every call.
type run struct {
	conn    *connector.Connector
	queue   *sink.Queue
	printer *printer
}

func (o *rootOptions) newRun(cmd *cobra.Command) (*run, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	observer, err := o.newObserver(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	queue := sink.NewQueue()
	conn, err := connector.New(cfg,
		connector.WithSink(queue),
		connector.WithObserver(observer),
	)
	if err != nil {
		return nil, err
	}

	return &run{
		conn:    conn,
		queue:   queue,
		printer: newPrinter(cmd.OutOrStdout(), o.jsonOutput),
	}, nil
}

func (r *run) start(ctx context.Context) error {
	if err := r.conn.Start(ctx); err != nil {
		return err
	}
	return r.flush()
}

func (r *run) say(ctx context.Context, text string) error {
	if err := r.conn.UserSays(ctx, text); err != nil {
		return err
	}
	return r.flush()
}

// stop closes the session with a context that survives cancellation of
// ctx, so an interrupted run still releases the remote session.
func (r *run) stop(ctx context.Context) error {
	defer r.queue.Close()
	return r.conn.Stop(context.WithoutCancel(ctx))
}

func (r *run) flush() error {
	return r.printer.print(r.queue.Drain())
}

// finish stops the session and joins a stop failure to err.
func (r *run) finish(ctx context.Context, err error) error {
	if stopErr := r.stop(ctx); stopErr != nil {
		return errors.Join(err, fmt.Errorf("stop: %w", stopErr))
	}
	return err
}
