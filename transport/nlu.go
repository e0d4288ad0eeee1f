package transport

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/mix"
)

// NLUInterpretProcedure is served by the NLU runtime.
const NLUInterpretProcedure = "/nuance.nlu.v1.Runtime/Interpret"

// NLUClient calls the NLU Runtime.
type NLUClient struct {
	interpret *unaryClient
}

// NewNLUClient creates an NLUClient for cfg.
func NewNLUClient(httpClient connect.HTTPClient, cfg *Config, ts TokenSource, opts ...connect.ClientOption) (*NLUClient, error) {
	options, err := callOptions(cfg, ts, opts)
	if err != nil {
		return nil, fmt.Errorf("nlu client: %w", err)
	}
	return &NLUClient{
		interpret: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, cfg.BaseURL()+NLUInterpretProcedure, options...),
	}, nil
}

// Interpret runs semantic interpretation of one text input.
func (c *NLUClient) Interpret(ctx context.Context, req *mix.InterpretRequest) (*mix.InterpretResult, error) {
	doc, err := req.Struct()
	if err != nil {
		return nil, err
	}
	resp, err := c.interpret.CallUnary(ctx, connect.NewRequest(doc))
	if err != nil {
		return nil, callError("interpret", err)
	}
	return mix.DecodeInterpretResult(resp.Msg)
}
