// Package transport carries the Nuance Mix dialog and NLU calls over
// connect-go clients. Messages travel as google.protobuf.Struct documents
// encoded with the protobuf JSON codec.
//
// The hosted Nuance Mix endpoints expect binary-encoded Nuance protos, so
// the default endpoints are only reachable through a gateway that accepts
// JSON payloads. Point Endpoint at such a gateway, or at a compatible test
// runtime.
package transport

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/mix"
)

// Procedures served by the dialog runtime.
const (
	DialogStartProcedure   = "/nuance.dlg.v1.DialogService/Start"
	DialogExecuteProcedure = "/nuance.dlg.v1.DialogService/Execute"
	DialogStopProcedure    = "/nuance.dlg.v1.DialogService/Stop"
)

type unaryClient = connect.Client[structpb.Struct, structpb.Struct]

// DialogClient calls the DialogService runtime.
type DialogClient struct {
	start   *unaryClient
	execute *unaryClient
	stop    *unaryClient
}

// NewDialogClient creates a DialogClient for cfg. Every call is
// authenticated through ts. Extra options are appended to the
// protocol options derived from cfg.
func NewDialogClient(httpClient connect.HTTPClient, cfg *Config, ts TokenSource, opts ...connect.ClientOption) (*DialogClient, error) {
	options, err := callOptions(cfg, ts, opts)
	if err != nil {
		return nil, fmt.Errorf("dialog client: %w", err)
	}
	base := cfg.BaseURL()
	return &DialogClient{
		start:   connect.NewClient[structpb.Struct, structpb.Struct](httpClient, base+DialogStartProcedure, options...),
		execute: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, base+DialogExecuteProcedure, options...),
		stop:    connect.NewClient[structpb.Struct, structpb.Struct](httpClient, base+DialogStopProcedure, options...),
	}, nil
}

// Start opens a dialog session.
func (c *DialogClient) Start(ctx context.Context, req *mix.StartRequest) (*mix.StartResult, error) {
	doc, err := req.Struct()
	if err != nil {
		return nil, err
	}
	resp, err := c.start.CallUnary(ctx, connect.NewRequest(doc))
	if err != nil {
		return nil, callError("start", err)
	}
	return mix.DecodeStartResult(resp.Msg)
}

// Execute runs one dialog turn.
func (c *DialogClient) Execute(ctx context.Context, req *mix.ExecuteRequest) (*mix.TurnResult, error) {
	doc, err := req.Struct()
	if err != nil {
		return nil, err
	}
	resp, err := c.execute.CallUnary(ctx, connect.NewRequest(doc))
	if err != nil {
		return nil, callError("execute", err)
	}
	return mix.DecodeTurnResult(resp.Msg)
}

// Stop closes a dialog session. An unknown session yields
// mix.ErrSessionNotFound.
func (c *DialogClient) Stop(ctx context.Context, sessionID string) error {
	doc, err := (&mix.StopRequest{SessionID: sessionID}).Struct()
	if err != nil {
		return err
	}
	if _, err := c.stop.CallUnary(ctx, connect.NewRequest(doc)); err != nil {
		return callError("stop", err)
	}
	return nil
}

func callOptions(cfg *Config, ts TokenSource, extra []connect.ClientOption) ([]connect.ClientOption, error) {
	options, err := cfg.clientOptions()
	if err != nil {
		return nil, err
	}
	if ts != nil {
		options = append(options, connect.WithInterceptors(NewBearerInterceptor(ts)))
	}
	return append(options, extra...), nil
}

func callError(op string, err error) error {
	if connect.CodeOf(err) == connect.CodeNotFound {
		return fmt.Errorf("%s: %w: %w", op, mix.ErrSessionNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
