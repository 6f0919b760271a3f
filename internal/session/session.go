// Package session owns the budget state for one store: it loads every key at
// startup, routes events through the engine and writes back what changed.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/store"
)

// Session is not safe for concurrent use.
type Session struct {
	kv       store.KV
	log      zerolog.Logger
	now      func() time.Time
	defaults model.AlertThresholds
	state    model.State
	fresh    bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for schema fallbacks and notices.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDefaultThresholds sets the thresholds used when the store has none.
func WithDefaultThresholds(th model.AlertThresholds) Option {
	return func(s *Session) {
		if budget.ValidateThresholds(th) == nil {
			s.defaults = th
		}
	}
}

// Open loads the state from kv. Unreadable values fall back to defaults;
// only store I/O errors are returned.
func Open(kv store.KV, opts ...Option) (*Session, error) {
	s := &Session{
		kv:       kv,
		log:      zerolog.Nop(),
		now:      time.Now,
		defaults: model.DefaultThresholds(),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads every key from the store.
func (s *Session) Reload() error {
	st := budget.NewState(s.defaults)
	found := 0

	for _, key := range Keys {
		raw, ok, err := s.kv.Get(key)
		if err != nil {
			return fmt.Errorf("loading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		found++
		if err := decodeInto(&st, key, raw); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("stored value rejected, using default")
		}
	}

	if !hasKey(s.kv, KeyCategories) {
		st.Categories = budget.ComputeAmounts(budget.DefaultCategories(), st.Income)
	}
	st.Alerts = budget.Reconcile(st.Alerts, budget.Evaluate(st), s.today())

	s.state = st
	s.fresh = found == 0
	s.log.Debug().Int("keys", found).Bool("fresh", s.fresh).Msg("session loaded")
	return nil
}

func hasKey(kv store.KV, key string) bool {
	_, ok, err := kv.Get(key)
	return ok && err == nil
}

// decodeInto parses one key into st. On error st is left unchanged for that
// field so the default stays in place.
func decodeInto(st *model.State, key, raw string) error {
	switch key {
	case KeyIncome:
		v, err := parseMoney(raw)
		if err != nil {
			return err
		}
		st.Income = v
	case KeySavingsGoal:
		v, err := parseMoney(raw)
		if err != nil {
			return err
		}
		st.Savings.Target = v
	case KeySavingsProgress:
		v, err := parseMoney(raw)
		if err != nil {
			return err
		}
		st.Savings.Progress = v
	case KeyExpenses:
		v, err := parseExpenses(raw)
		if err != nil {
			return err
		}
		st.Expenses = v
	case KeyCategories:
		v, err := parseCategories(raw, st.Income)
		if err != nil {
			st.Categories = budget.ComputeAmounts(budget.DefaultCategories(), st.Income)
			return err
		}
		st.Categories = v
	case KeyThresholds:
		v, err := parseThresholds(raw)
		if err != nil {
			return err
		}
		st.Thresholds = v
	case KeyTheme:
		v, err := parseTheme(raw)
		if err != nil {
			return err
		}
		st.Theme = v
	case KeyIncomeHistory:
		v, err := parseIncomeHistory(raw)
		if err != nil {
			return err
		}
		st.IncomeHistory = v
	case KeyAlerts:
		v, err := parseAlerts(raw)
		if err != nil {
			return err
		}
		st.Alerts = v
	}
	return nil
}

// State returns a copy of the current state.
func (s *Session) State() model.State {
	return s.state.Clone()
}

// Fresh reports whether the store held no keys when last loaded.
func (s *Session) Fresh() bool {
	return s.fresh
}

// Overview returns the headline figures for the current state.
func (s *Session) Overview() budget.Overview {
	return budget.ComputeOverview(s.state)
}

// Apply runs ev through the engine and persists the changed keys in one
// batch. When the engine rejects the event or the write fails, neither the
// in-memory state nor the store changes.
func (s *Session) Apply(ev budget.Event) (budget.Effects, error) {
	if r, ok := ev.(budget.ResetAll); ok && r.Thresholds == (model.AlertThresholds{}) {
		ev = budget.ResetAll{Thresholds: s.defaults}
	}
	next, fx, err := budget.Apply(s.state, ev, s.now())
	if err != nil {
		s.log.Debug().Err(err).Type("event", ev).Msg("event rejected")
		return fx, err
	}

	b, err := batchFor(next, fx)
	if err != nil {
		return budget.Effects{}, fmt.Errorf("encoding state: %w", err)
	}
	if err := s.kv.Write(b); err != nil {
		return budget.Effects{}, fmt.Errorf("saving budget: %w", err)
	}

	s.state = next
	s.fresh = false
	for _, n := range fx.Notices {
		var mc *budget.MissingCategoryError
		if errors.As(n, &mc) {
			s.log.Warn().Str("category", mc.Category).Msg("expense recorded without a matching budget category")
			continue
		}
		s.log.Warn().Err(n).Msg("budget notice")
	}
	s.recordSnapshot(fx.Reset)
	return fx, nil
}

func batchFor(st model.State, fx budget.Effects) (store.Batch, error) {
	var b store.Batch
	if fx.Reset {
		for _, k := range Keys {
			if k != KeyTheme {
				b.Remove = append(b.Remove, k)
			}
		}
		return b, nil
	}
	b.Set = make(map[string]string)
	for _, fk := range fieldKeys {
		if !fx.Fields.Has(fk.field) {
			continue
		}
		v, err := encode(fk.key, st)
		if err != nil {
			return b, err
		}
		b.Set[fk.key] = v
	}
	return b, nil
}

// Snapshot summarizes the current state for the daily history.
func (s *Session) Snapshot() store.DailySnapshot {
	o := s.Overview()
	return store.DailySnapshot{
		Day:             s.today(),
		Income:          o.Income,
		Spent:           o.TotalSpent,
		Remaining:       o.Remaining,
		SavingsTarget:   o.SavingsTarget,
		SavingsProgress: o.SavingsSaved,
		ExpenseCount:    o.ExpenseCount,
		AlertCount:      o.AlertCount,
	}
}

// RecordSnapshot writes today's summary when the store keeps history.
func (s *Session) RecordSnapshot() error {
	rec, ok := s.kv.(store.SnapshotRecorder)
	if !ok {
		return nil
	}
	return rec.RecordSnapshot(s.Snapshot())
}

func (s *Session) recordSnapshot(reset bool) {
	rec, ok := s.kv.(store.SnapshotRecorder)
	if !ok {
		return
	}
	if reset {
		if err := rec.ClearSnapshots(); err != nil {
			s.log.Warn().Err(err).Msg("clearing history failed")
		}
		return
	}
	if err := rec.RecordSnapshot(s.Snapshot()); err != nil {
		s.log.Warn().Err(err).Msg("recording daily snapshot failed")
	}
}

// History returns stored daily snapshots since the given day.
func (s *Session) History(since string) ([]store.DailySnapshot, error) {
	rec, ok := s.kv.(store.SnapshotRecorder)
	if !ok {
		return nil, nil
	}
	return rec.Snapshots(since)
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.now()
}

func (s *Session) today() string {
	return s.now().Format(model.DateLayout)
}

// ParseAmount parses user input into a decimal, rejecting junk and negatives.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", budget.ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", budget.ErrInvalidAmount, raw)
	}
	return d, nil
}
