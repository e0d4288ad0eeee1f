package transport

import (
	"context"

	"connectrpc.com/connect"
)

// TokenSource yields the bearer token attached to outbound calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// NewBearerInterceptor returns a client interceptor that consults ts before
// every unary call and sets the authorization header. It may run
// concurrently for calls of the same turn.
func NewBearerInterceptor(ts TokenSource) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				token, err := ts.Token(ctx)
				if err != nil {
					return nil, connect.NewError(connect.CodeUnauthenticated, err)
				}
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
