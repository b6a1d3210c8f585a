package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"symposium/internal/discussion"
	"symposium/internal/gateway/config"
	"symposium/internal/gateway/handler"
	"symposium/internal/gateway/handler/rpc"
	"symposium/internal/gateway/server"
	"symposium/internal/gateway/session"
	"symposium/internal/llm"
	llmclient "symposium/internal/llmClient"
	"symposium/internal/notify"
)

type App struct {
	server   *server.Server
	handler  http.Handler
	sessions *session.Registry
	client   llmclient.TextClient
	cancel   context.CancelFunc
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := llmclient.New(context.Background(), cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	return NewWithClient(cfg, client)
}

// NewWithClient wires the gateway around an existing provider client.
func NewWithClient(cfg *config.Config, client llmclient.TextClient) (*App, error) {
	base, cancel := context.WithCancel(context.Background())

	r, err := loadRoster(base, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	avatars, err := newAvatarResolver(cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	// Provider rate-limit headers are only visible on the unwrapped client.
	limits, _ := client.(llmclient.RateLimitHeaderAwareClient)
	if limits != nil {
		name := client.Name()
		limits.SetRateLimitHeaderHandler(func(h llmclient.RateLimitHeaders) {
			if h.Exhausted() {
				log.Printf("%s: rate limit exhausted, retry after %ds", name, h.RetryAfterSeconds)
			}
		})
	}

	// Dependencies
	client = llm.Wrap(client,
		llm.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
		llm.WithHooks(),
		llm.WithLogging(log.Default()),
	)
	policy := discussion.RetryPolicy{
		MaxAttempts: cfg.Discussion.MaxAttempts,
		Delay:       cfg.Discussion.RetryDelay,
	}
	factory := func(ctx context.Context, sink notify.Sink) (*discussion.Orchestrator, error) {
		return discussion.New(discussion.Config{
			Client:           client,
			Sink:             sink,
			Policy:           policy,
			RequireModerator: cfg.Discussion.RequireModerator,
			BaseContext:      ctx,
		})
	}
	sessions, err := session.NewRegistry(base, cfg.SessionCapacity, factory, notify.LogSink{})
	if err != nil {
		cancel()
		return nil, err
	}

	rosterHandler := rpc.NewRosterHandler(r, avatars)
	discussionHandler := rpc.NewDiscussionHandler(sessions, r, avatars)
	debugHandler := handler.NewDebugHandler(sessions, client.Name(), limits)

	// Routing & Server
	mux := server.NewMux(rosterHandler, discussionHandler, debugHandler, cfg.AllowedOrigins)
	srv := server.New(cfg.Port, mux)

	return &App{
		server:   srv,
		handler:  mux,
		sessions: sessions,
		client:   client,
		cancel:   cancel,
	}, nil
}

// Handler returns the routed handler without the h2c and tracing wrappers.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the server, then every session and the provider client.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.sessions.Close()
	a.cancel()
	if cerr := a.client.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
