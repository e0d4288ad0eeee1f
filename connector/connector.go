// Package connector drives a Nuance Mix dialog session for a conversational
// test harness: it opens the session, forwards user turns, and delivers the
// normalized bot messages to a sink.
//
// The connector initializes from configuration via New, creating the token
// cache and the dialog and NLU transports internally. Functional options
// override any of them for testing.
//
//	c, err := connector.New(cfg, connector.WithSink(queue))
//	err = c.Start(ctx)
//	err = c.UserSays(ctx, "book a flight")
//	err = c.Stop(ctx)
package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codeforequity-at/botium-connector-nuance/auth"
	"github.com/codeforequity-at/botium-connector-nuance/entity"
	"github.com/codeforequity-at/botium-connector-nuance/mix"
	"github.com/codeforequity-at/botium-connector-nuance/normalize"
	"github.com/codeforequity-at/botium-connector-nuance/observability"
	"github.com/codeforequity-at/botium-connector-nuance/session"
	"github.com/codeforequity-at/botium-connector-nuance/sink"
	"github.com/codeforequity-at/botium-connector-nuance/transport"
)

// DialogService is the remote dialog runtime.
type DialogService interface {
	Start(ctx context.Context, req *mix.StartRequest) (*mix.StartResult, error)
	Execute(ctx context.Context, req *mix.ExecuteRequest) (*mix.TurnResult, error)
	// Stop closes the session. An unknown session must wrap
	// mix.ErrSessionNotFound.
	Stop(ctx context.Context, sessionID string) error
}

// NLUService is the remote NLU runtime used for NLP analytics.
type NLUService interface {
	Interpret(ctx context.Context, req *mix.InterpretRequest) (*mix.InterpretResult, error)
}

// Option configures a Connector. Options are applied before the
// config-created subsystems, which are only built for what remains unset.
type Option func(*Connector)

// WithDialogService overrides the config-created dialog transport.
func WithDialogService(d DialogService) Option {
	return func(c *Connector) { c.dialog = d }
}

// WithNLUService overrides the config-created NLU transport.
func WithNLUService(n NLUService) Option {
	return func(c *Connector) { c.nlu = n }
}

// WithAuthenticator overrides the OAuth2 authenticator behind the token cache.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(c *Connector) { c.authenticator = a }
}

// WithSink sets the consumer of bot messages. Defaults to sink.Discard.
func WithSink(s sink.Sink) Option {
	return func(c *Connector) { c.sink = s }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(c *Connector) { c.observer = o }
}

// WithTurnDelay overrides the configured delay before each user turn.
func WithTurnDelay(d time.Duration) Option {
	return func(c *Connector) {
		c.turnDelay = d
		c.turnDelaySet = true
	}
}

// WithHTTPClient sets the HTTP client used for token requests and RPCs.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) { c.httpClient = client }
}

// Connector owns one dialog session at a time. Start, UserSays and Stop are
// expected to be called from a single logical flow.
type Connector struct {
	cfg        Config
	session    *session.Session
	normalizer *normalize.Normalizer

	authenticator auth.Authenticator
	tokens        *auth.TokenCache
	dialog        DialogService
	nlu           NLUService
	sink          sink.Sink
	observer      observability.Observer
	httpClient    *http.Client

	turnDelay    time.Duration
	turnDelaySet bool
}

// New creates a Connector from configuration. The configuration is
// validated before anything else is built; failures wrap ErrValidation.
func New(cfg *Config, opts ...Option) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := entity.ParseValueMode(cfg.EntityValueMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	c := &Connector{
		cfg:     *cfg,
		session: session.New(&cfg.Session),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.observer == nil {
		c.observer = observability.NewSlogObserver(slog.Default())
	}
	if c.sink == nil {
		c.sink = sink.Discard
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if !c.turnDelaySet {
		c.turnDelay = cfg.TurnDelay()
	}
	if c.authenticator == nil {
		c.authenticator = auth.NewOAuth2Authenticator(cfg.Auth.TokenURL, c.httpClient)
	}
	c.tokens = auth.NewTokenCache(c.authenticator, cfg.Auth.Credentials(),
		auth.WithRetryPolicy(cfg.Auth.MaxRetries, cfg.Auth.RetryDelay()),
		auth.WithCacheObserver(c.observer),
	)

	if c.dialog == nil {
		d, err := transport.NewDialogClient(c.httpClient, &c.cfg.Dialog, c.tokens)
		if err != nil {
			return nil, fmt.Errorf("failed to create dialog client: %w", err)
		}
		c.dialog = d
	}
	if c.nlu == nil && cfg.NLPAnalytics {
		n, err := transport.NewNLUClient(c.httpClient, &c.cfg.NLU, c.tokens)
		if err != nil {
			return nil, fmt.Errorf("failed to create nlu client: %w", err)
		}
		c.nlu = n
	}

	c.normalizer = normalize.New(mode, c.observer)
	return c, nil
}

// Tokens returns the token cache shared by the config-created transports.
func (c *Connector) Tokens() *auth.TokenCache {
	return c.tokens
}

// State returns the session lifecycle state.
func (c *Connector) State() session.State {
	return c.session.State()
}

// SessionID returns the remote session id, or "" when no session is open.
func (c *Connector) SessionID() string {
	return c.session.ID()
}

// Start opens a dialog session and, unless skip_welcome is set, runs the
// welcome turn and delivers its messages before returning. Any failure
// leaves the connector Idle and ready for another Start.
func (c *Connector) Start(ctx context.Context) error {
	if err := c.session.Transition(session.Idle, session.Starting); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventSessionStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "connector.Start",
		Data: map[string]any{
			"context_tag": c.cfg.ContextTag,
			"channel":     c.cfg.Session.Channel,
			"language":    c.cfg.Session.Language,
		},
	})

	if err := c.open(ctx); err != nil {
		c.session.Reset()
		c.fail(ctx, "connector.Start", err)
		return err
	}

	if !c.cfg.SkipWelcome {
		turn, err := c.execute(ctx, c.session.ID(), "")
		if err != nil {
			c.session.Reset()
			err = fmt.Errorf("%w: welcome turn: %w", ErrTurnFailed, err)
			c.fail(ctx, "connector.Start", err)
			return err
		}
		n := c.deliver(ctx, turn, nil)

		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventWelcome,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "connector.Start",
			Data:      map[string]any{"messages": n},
		})
	}

	if err := c.session.Transition(session.Starting, session.Active); err != nil {
		c.session.Reset()
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventReady,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "connector.Start",
		Data:      map[string]any{"session_id": c.session.ID()},
	})
	return nil
}

func (c *Connector) open(ctx context.Context) error {
	sc := &c.cfg.Session
	started, err := c.dialog.Start(ctx, &mix.StartRequest{
		SessionID:           sc.SessionID,
		Selector:            c.session.Selector(),
		ModelURI:            mix.DialogModelURI(c.cfg.ContextTag),
		Data:                sc.InitialContext,
		SuppressLogUserData: sc.SuppressLogUserData,
		TimeoutSec:          sc.TimeoutSec,
		UserID:              sc.UserID,
		ClientData:          sc.ClientData,
	})
	if err == nil {
		err = started.Status.Err()
	}
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if started.SessionID == "" {
		return ErrSessionIDMissing
	}
	return c.session.Bind(started.SessionID)
}

// UserSays sends one user turn and delivers the resulting messages. When NLP
// analytics is enabled and text is non-empty, the NLU interpretation runs
// concurrently with the dialog turn. A failure of either call aborts the
// turn with ErrTurnFailed or ErrInterpretFailed; the session stays Active.
func (c *Connector) UserSays(ctx context.Context, text string) error {
	if state := c.session.State(); state != session.Active {
		return fmt.Errorf("%w: user turn while %s", ErrInvalidState, state)
	}
	sessionID := c.session.ID()

	if err := c.pace(ctx); err != nil {
		return err
	}

	turnID := uuid.NewString()
	var (
		turn   *mix.TurnResult
		interp *mix.InterpretResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := c.execute(gctx, sessionID, text)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTurnFailed, err)
		}
		turn = result
		return nil
	})
	if c.analytics(text) {
		g.Go(func() error {
			result, err := c.nlu.Interpret(gctx, &mix.InterpretRequest{
				ModelURI:   mix.NLUModelURI(c.cfg.ContextTag, c.cfg.NLULanguage),
				Text:       text,
				UserID:     c.cfg.Session.UserID,
				ClientData: c.cfg.Session.ClientData,
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInterpretFailed, err)
			}
			interp = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "connector.UserSays",
			Data:      map[string]any{"turn_id": turnID, "error": err.Error()},
		})
		return err
	}

	n := c.deliver(ctx, turn, interp)

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurn,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "connector.UserSays",
		Data: map[string]any{
			"turn_id":   turnID,
			"messages":  n,
			"analytics": interp != nil,
		},
	})
	return nil
}

// Stop closes the open session. It is a no-op when no session is open. The
// local session is cleared whatever the outcome; an already unknown remote
// session counts as closed.
func (c *Connector) Stop(ctx context.Context) error {
	sessionID := c.session.ID()
	if sessionID == "" {
		return nil
	}
	if err := c.session.Transition(session.Active, session.Stopping); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	defer c.session.Reset()

	err := c.dialog.Stop(ctx, sessionID)
	switch {
	case errors.Is(err, mix.ErrSessionNotFound):
		c.observer.OnEvent(ctx, observability.Event{
			Type:      EventStopNotFound,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "connector.Stop",
			Data:      map[string]any{"session_id": sessionID},
		})
		return nil
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrCloseFailed, err)
		c.fail(ctx, "connector.Stop", err)
		return err
	}

	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventStop,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "connector.Stop",
		Data:      map[string]any{"session_id": sessionID},
	})
	return nil
}

func (c *Connector) analytics(text string) bool {
	return c.cfg.NLPAnalytics && c.nlu != nil && text != ""
}

func (c *Connector) execute(ctx context.Context, sessionID, text string) (*mix.TurnResult, error) {
	turn, err := c.dialog.Execute(ctx, &mix.ExecuteRequest{
		SessionID: sessionID,
		Selector:  c.session.Selector(),
		UserText:  text,
	})
	if err != nil {
		return nil, err
	}
	if err := turn.Status.Err(); err != nil {
		return nil, err
	}
	return turn, nil
}

func (c *Connector) deliver(ctx context.Context, turn *mix.TurnResult, interp *mix.InterpretResult) int {
	messages := c.normalizer.Normalize(ctx, turn, interp)
	for _, msg := range messages {
		c.sink.Deliver(msg)
	}
	return len(messages)
}

// pace waits the full turn delay before a user turn is issued.
func (c *Connector) pace(ctx context.Context) error {
	if c.turnDelay <= 0 {
		return nil
	}

	t := time.NewTimer(c.turnDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Connector) fail(ctx context.Context, source string, err error) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      EventError,
		Level:     observability.LevelError,
		Timestamp: time.Now(),
		Source:    source,
		Data:      map[string]any{"error": err.Error()},
	})
}
