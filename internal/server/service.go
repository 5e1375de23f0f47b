// Package server provides the token service that stores subscription lists
// behind opaque tokens, plus its status and event endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/subtrack/internal/events"
	xlog "github.com/theirongolddev/subtrack/internal/log"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Backend      string
	EventsBuffer int
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Backend         string    `json:"backend"`
	Tokens          int       `json:"tokens"`
	TokensIssued    int64     `json:"tokens_issued"`
	Syncs           int64     `json:"syncs"`
	Fetches         int64     `json:"fetches"`
	LastSyncAt      time.Time `json:"last_sync_at,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the token API.
type Service struct {
	cfg  Config
	repo Repository
	pub  events.Publisher
	log  *slog.Logger

	mu           sync.RWMutex
	startedAt    time.Time
	tokensIssued int64
	syncs        int64
	fetches      int64
	lastSyncAt   time.Time
	lastError    string
	nextEventSeq int64
	events       []events.Event

	nextSubID int
	subs      map[int]chan events.Event
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher forwards every event to p as well as the in-process buffer.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New returns a service storing lists in repo.
func New(cfg Config, repo Repository, opts ...Option) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8082"
	}

	s := &Service{
		cfg:       cfg,
		repo:      repo,
		pub:       events.Nop{},
		log:       slog.Default(),
		startedAt: time.Now(),
		subs:      make(map[int]chan events.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full HTTP handler: routes wrapped in CORS and request
// logging.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sub", s.handleGetByQuery)
	mux.HandleFunc("GET /sub/{token}", s.handleGetByPath)
	mux.HandleFunc("POST /sub/new_token", s.handleNewToken)
	mux.HandleFunc("POST /sub/sync", s.handleSync)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)

	return xlog.Middleware(xlog.WithComponent(s.log, xlog.ComponentHTTP))(cors(mux))
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("server listening", "addr", s.cfg.Addr, "backend", s.cfg.Backend)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeSubscribers()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server http: %w", err)
	}
}

// publishEvent records ev in the ring buffer, fans it out to stream
// subscribers and hands it to the external publisher.
func (s *Service) publishEvent(ctx context.Context, ev events.Event) {
	s.mu.Lock()
	s.nextEventSeq++
	ev.Seq = s.nextEventSeq
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()

	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", "type", ev.Type, "err", err)
	}
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
	s.log.Error("repository error", "err", err)
}

// Status reports counters and the current token count.
func (s *Service) Status(ctx context.Context) Status {
	tokens, err := s.repo.Count(ctx)
	if err != nil {
		s.recordError(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Backend:         s.cfg.Backend,
		Tokens:          tokens,
		TokensIssued:    s.tokensIssued,
		Syncs:           s.syncs,
		Fetches:         s.fetches,
		LastSyncAt:      s.lastSyncAt,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan events.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Service) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}
