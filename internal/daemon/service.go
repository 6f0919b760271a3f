// Package daemon provides the long-running background budget monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/store"
)

// historyDays bounds the daily snapshots cached for /v1/history.
const historyDays = 366

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Thresholds   model.AlertThresholds
	Log          zerolog.Logger
}

// Source opens a session over the budget store for one poll. The returned
// close func releases the underlying store.
type Source func() (*session.Session, func() error, error)

// SQLiteSource opens the SQLite store at path on every call.
func SQLiteSource(path string, opts ...session.Option) Source {
	return func() (*session.Session, func() error, error) {
		db, err := store.Open(path)
		if err != nil {
			return nil, nil, err
		}
		sess, err := session.Open(db, opts...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sess, db.Close, nil
	}
}

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At       time.Time       `json:"at"`
	Overview budget.Overview `json:"overview"`
	Alerts   []model.Alert   `json:"alerts"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Income        decimal.Decimal `json:"income"`
	Spent         decimal.Decimal `json:"spent"`
	Expenses      int             `json:"expenses"`
	Alerts        int             `json:"alerts"`
	AlertsChanged bool            `json:"alerts_changed"`
}

func (d Delta) isZero() bool {
	return d.Income.IsZero() &&
		d.Spent.IsZero() &&
		d.Expenses == 0 &&
		d.Alerts == 0 &&
		!d.AlertsChanged
}

// Event is emitted whenever the budget snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	source Source
	log    zerolog.Logger
	router chi.Router

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	expenses    []model.Expense
	history     []store.DailySnapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading budgets from src.
func New(cfg Config, src Source) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	s := &Service{
		cfg:       cfg,
		source:    src,
		log:       cfg.Log.With().Str("component", "daemon").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.router = s.routes()
	return s
}

// Handler exposes the HTTP API.
func (s *Service) Handler() http.Handler { return s.router }

func (s *Service) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/expenses", s.handleExpenses)
		r.Get("/history", s.handleHistory)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run starts HTTP endpoints and the poll schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.cfg.Interval), s.pollOnce); err != nil {
		return fmt.Errorf("scheduling poll: %w", err)
	}
	if _, err := c.AddFunc("@daily", s.recordDaily); err != nil {
		return fmt.Errorf("scheduling daily snapshot: %w", err)
	}
	c.Start()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon started")

	defer func() {
		<-c.Stop().Done()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info().Msg("daemon shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) pollOnce() {
	sess, closeFn, err := s.source()
	if err != nil {
		s.pollFailed(err)
		return
	}
	defer func() { _ = closeFn() }()

	now := sess.Now()
	state := sess.State()
	history, err := sess.History(now.AddDate(0, 0, -historyDays).Format(model.DateLayout))
	if err != nil {
		s.log.Warn().Err(err).Msg("reading history failed")
	}

	snap := Snapshot{
		At:       now,
		Overview: budget.ComputeOverview(state),
		Alerts:   budget.Visible(state.Alerts),
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.expenses = state.Expenses
	if err == nil {
		s.history = history
	}
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "budget_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug().Int64("event", ev.ID).Str("type", ev.Type).Msg("budget changed")
		s.publishEvent(ev)
	}
}

func (s *Service) pollFailed(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()
	s.log.Error().Err(err).Msg("daemon poll failed")
}

func (s *Service) recordDaily() {
	sess, closeFn, err := s.source()
	if err != nil {
		s.log.Error().Err(err).Msg("daily snapshot: opening store failed")
		return
	}
	defer func() { _ = closeFn() }()
	if err := sess.RecordSnapshot(); err != nil {
		s.log.Error().Err(err).Msg("daily snapshot failed")
		return
	}
	s.log.Info().Str("day", sess.Now().Format(model.DateLayout)).Msg("daily snapshot recorded")
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Income:        curr.Overview.Income.Sub(prev.Overview.Income),
		Spent:         curr.Overview.TotalSpent.Sub(prev.Overview.TotalSpent),
		Expenses:      curr.Overview.ExpenseCount - prev.Overview.ExpenseCount,
		Alerts:        len(curr.Alerts) - len(prev.Alerts),
		AlertsChanged: !slices.Equal(alertIDs(prev.Alerts), alertIDs(curr.Alerts)),
	}
}

func alertIDs(alerts []model.Alert) []string {
	ids := make([]string, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	slices.Sort(ids)
	return ids
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
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
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	alerts := slices.Clone(s.snapshot.Alerts)
	s.mu.RUnlock()
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, alerts)
}

// handleExpenses serves the newest expenses, 50 by default or ?limit=n.
func (s *Service) handleExpenses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	s.mu.RLock()
	expenses := slices.Clone(s.expenses[:min(limit, len(s.expenses))])
	s.mu.RUnlock()
	if expenses == nil {
		expenses = []model.Expense{}
	}
	writeJSON(w, expenses)
}

// handleHistory serves daily snapshots, optionally from ?since=YYYY-MM-DD.
func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")
	if since != "" {
		if _, err := time.Parse(model.DateLayout, since); err != nil {
			http.Error(w, "since must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	s.mu.RLock()
	out := make([]store.DailySnapshot, 0, len(s.history))
	for _, d := range s.history {
		if d.Day >= since {
			out = append(out, d)
		}
	}
	s.mu.RUnlock()
	writeJSON(w, out)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
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
