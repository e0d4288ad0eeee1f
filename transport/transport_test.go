package transport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/codeforequity-at/botium-connector-nuance/auth"
	"github.com/codeforequity-at/botium-connector-nuance/mix"
	"github.com/codeforequity-at/botium-connector-nuance/session"
	"github.com/codeforequity-at/botium-connector-nuance/transport"
)

type handlerFunc func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)

type fakeRuntime struct {
	mu       sync.Mutex
	headers  map[string][]string
	requests map[string][]*structpb.Struct
	handlers map[string]handlerFunc
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		headers:  map[string][]string{},
		requests: map[string][]*structpb.Struct{},
		handlers: map[string]handlerFunc{},
	}
}

func (f *fakeRuntime) on(procedure string, h handlerFunc) {
	f.handlers[procedure] = h
}

func (f *fakeRuntime) serve(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for procedure, h := range f.handlers {
		mux.Handle(procedure, connect.NewUnaryHandler(procedure,
			func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
				f.mu.Lock()
				f.headers[procedure] = append(f.headers[procedure], req.Header().Get("Authorization"))
				f.requests[procedure] = append(f.requests[procedure], req.Msg)
				f.mu.Unlock()
				return h(ctx, req)
			}))
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func reply(t *testing.T, doc map[string]any) handlerFunc {
	return func(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
		s, err := structpb.NewStruct(doc)
		require.NoError(t, err)
		return connect.NewResponse(s), nil
	}
}

func staticToken(token string) transport.TokenSource {
	return transport.TokenSourceFunc(func(context.Context) (string, error) { return token, nil })
}

func connectConfig(server *httptest.Server) *transport.Config {
	return &transport.Config{Endpoint: server.URL, Protocol: transport.ProtocolConnect}
}

func TestDialogClient_StartExecuteStop(t *testing.T) {
	rt := newFakeRuntime()
	rt.on(transport.DialogStartProcedure, reply(t, map[string]any{
		"payload": map[string]any{"session_id": "s1"},
	}))
	rt.on(transport.DialogExecuteProcedure, reply(t, map[string]any{
		"payload": map[string]any{
			"messages": []any{
				map[string]any{"visual": []any{map[string]any{"text": "Hi"}}},
			},
		},
	}))
	rt.on(transport.DialogStopProcedure, reply(t, map[string]any{}))
	server := rt.serve(t)

	client, err := transport.NewDialogClient(server.Client(), connectConfig(server), staticToken("tok"))
	require.NoError(t, err)

	selector := session.Selector{Channel: "default", Language: "en-US", Library: "default"}
	started, err := client.Start(context.Background(), &mix.StartRequest{
		Selector: selector,
		ModelURI: mix.DialogModelURI("A1_C1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", started.SessionID)

	turn, err := client.Execute(context.Background(), &mix.ExecuteRequest{SessionID: "s1", Selector: selector})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hi"}}, turn.Messages)

	require.NoError(t, client.Stop(context.Background(), "s1"))

	for _, procedure := range []string{
		transport.DialogStartProcedure,
		transport.DialogExecuteProcedure,
		transport.DialogStopProcedure,
	} {
		assert.Equal(t, []string{"Bearer tok"}, rt.headers[procedure], procedure)
	}

	startDoc := rt.requests[transport.DialogStartProcedure][0].AsMap()
	payload := startDoc["payload"].(map[string]any)
	assert.Equal(t, "urn:nuance-mix:tag:model/A1_C1/mix.dialog", payload["model_ref"].(map[string]any)["uri"])
	assert.Equal(t, "s1", rt.requests[transport.DialogStopProcedure][0].AsMap()["session_id"])
}

func TestDialogClient_StopNotFound(t *testing.T) {
	rt := newFakeRuntime()
	rt.on(transport.DialogStopProcedure, func(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("session s1 not found"))
	})
	server := rt.serve(t)

	client, err := transport.NewDialogClient(server.Client(), connectConfig(server), staticToken("tok"))
	require.NoError(t, err)

	err = client.Stop(context.Background(), "s1")

	require.ErrorIs(t, err, mix.ErrSessionNotFound)
}

func TestDialogClient_RemoteErrorPreservesMessage(t *testing.T) {
	rt := newFakeRuntime()
	rt.on(transport.DialogExecuteProcedure, func(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
		return nil, connect.NewError(connect.CodeInternal, errors.New("dialog engine exploded"))
	})
	server := rt.serve(t)

	client, err := transport.NewDialogClient(server.Client(), connectConfig(server), staticToken("tok"))
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), &mix.ExecuteRequest{SessionID: "s1"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, mix.ErrSessionNotFound)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "dialog engine exploded")
}

func TestBearerInterceptor_TokenFailureAbortsCall(t *testing.T) {
	rt := newFakeRuntime()
	rt.on(transport.DialogStartProcedure, reply(t, map[string]any{}))
	server := rt.serve(t)

	failing := transport.TokenSourceFunc(func(context.Context) (string, error) {
		return "", auth.ErrAuthFailed
	})
	client, err := transport.NewDialogClient(server.Client(), connectConfig(server), failing)
	require.NoError(t, err)

	_, err = client.Start(context.Background(), &mix.StartRequest{})

	require.ErrorIs(t, err, auth.ErrAuthFailed)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	assert.Empty(t, rt.requests[transport.DialogStartProcedure])
}

func TestNLUClient_Interpret(t *testing.T) {
	rt := newFakeRuntime()
	rt.on(transport.NLUInterpretProcedure, reply(t, map[string]any{
		"status": map[string]any{"code": 200},
		"result": map[string]any{
			"interpretations": []any{
				map[string]any{"single_intent_interpretation": map[string]any{
					"intent":     "iBookFlight",
					"confidence": 0.99,
				}},
			},
		},
	}))
	server := rt.serve(t)

	client, err := transport.NewNLUClient(server.Client(), connectConfig(server), staticToken("nlu-tok"))
	require.NoError(t, err)

	result, err := client.Interpret(context.Background(), &mix.InterpretRequest{
		ModelURI: mix.NLUModelURI("A1_C1", "eng-USA"),
		Text:     "book a flight",
	})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "iBookFlight", result.Candidates[0].Intent)
	assert.InDelta(t, 0.99, result.Candidates[0].Confidence, 1e-9)

	assert.Equal(t, []string{"Bearer nlu-tok"}, rt.headers[transport.NLUInterpretProcedure])
	doc := rt.requests[transport.NLUInterpretProcedure][0].AsMap()
	assert.Equal(t, "book a flight", doc["input"].(map[string]any)["text"])
}

func TestConfig(t *testing.T) {
	dlg := transport.DefaultDialogConfig()
	assert.Equal(t, "https://dlg.api.nuance.com:443", dlg.BaseURL())

	dlg.Merge(&transport.Config{Endpoint: "http://localhost:8080/"})
	assert.Equal(t, "http://localhost:8080", dlg.BaseURL())
	assert.Equal(t, transport.ProtocolGRPC, dlg.Protocol)

	nlu := transport.DefaultNLUConfig()
	assert.Equal(t, "https://nlu.api.nuance.com:443", nlu.BaseURL())
}

func TestConfig_HostedEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		hosted   bool
	}{
		{transport.DefaultDialogEndpoint, true},
		{"https://nlu.api.nuance.com", true},
		{"https://dlg.api.nuance.com:443/", true},
		{"http://localhost:8080", false},
		{"gateway.internal:8443", false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			cfg := transport.Config{Endpoint: tt.endpoint}
			assert.Equal(t, tt.hosted, cfg.HostedEndpoint())
		})
	}
}

func TestNewDialogClient_UnknownProtocol(t *testing.T) {
	_, err := transport.NewDialogClient(http.DefaultClient, &transport.Config{Endpoint: "x", Protocol: "carrier-pigeon"}, nil)
	require.Error(t, err)
}
