package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cbudget/internal/budget"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/session"
	"github.com/theirongolddev/cbudget/internal/store"
)

var testNow = time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)

func memorySource(kv store.KV) Source {
	return func() (*session.Session, func() error, error) {
		sess, err := session.Open(kv, session.WithClock(func() time.Time { return testNow }))
		return sess, func() error { return nil }, err
	}
}

func newTestService(t *testing.T, kv store.KV) *Service {
	t.Helper()
	return New(Config{Interval: 10 * time.Second, EventsBuffer: 10, Log: zerolog.Nop()}, memorySource(kv))
}

func apply(t *testing.T, kv store.KV, evs ...budget.Event) {
	t.Helper()
	sess, err := session.Open(kv, session.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	for _, ev := range evs {
		_, err := sess.Apply(ev)
		require.NoError(t, err)
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Overview: budget.Overview{Income: decimal.NewFromInt(1000), TotalSpent: decimal.NewFromInt(100), ExpenseCount: 2},
		Alerts:   []model.Alert{{ID: "warning:Food"}},
	}
	curr := Snapshot{
		Overview: budget.Overview{Income: decimal.NewFromInt(1000), TotalSpent: decimal.NewFromInt(160), ExpenseCount: 3},
		Alerts:   []model.Alert{{ID: "danger:Food"}},
	}

	delta := diffSnapshots(prev, curr)
	assert.True(t, delta.Income.IsZero())
	assert.Equal(t, "60", delta.Spent.String())
	assert.Equal(t, 1, delta.Expenses)
	assert.Equal(t, 0, delta.Alerts)
	assert.True(t, delta.AlertsChanged)
	assert.False(t, delta.isZero())

	assert.True(t, diffSnapshots(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, memorySource(store.NewMemory()))

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPollOnce_PublishesOnlyOnChange(t *testing.T) {
	kv := store.NewMemory()
	s := newTestService(t, kv)

	s.pollOnce()
	s.pollOnce()
	require.Len(t, s.events, 1)
	assert.Equal(t, "snapshot", s.events[0].Type)

	apply(t, kv,
		budget.SetIncome{Amount: decimal.NewFromInt(1000), Date: "2025-04-01"},
		budget.AddExpense{Expense: model.Expense{Category: "Food", Amount: decimal.NewFromInt(900), Date: "2025-04-02"}},
	)
	s.pollOnce()

	require.Len(t, s.events, 2)
	ev := s.events[1]
	assert.Equal(t, "budget_delta", ev.Type)
	assert.Equal(t, int64(2), ev.ID)
	assert.Equal(t, "900", ev.Delta.Spent.String())
	assert.Equal(t, 1, ev.Delta.Expenses)
	assert.True(t, ev.Delta.AlertsChanged)
	assert.Equal(t, int64(3), s.snapshotStatus().PollCount)
}

func TestPollOnce_SourceErrorIsRecorded(t *testing.T) {
	s := New(Config{Log: zerolog.Nop()}, func() (*session.Session, func() error, error) {
		return nil, nil, assert.AnError
	})
	s.pollOnce()

	st := s.snapshotStatus()
	assert.Equal(t, assert.AnError.Error(), st.LastError)
	assert.Equal(t, int64(1), st.PollCount)
	assert.Zero(t, st.EventCount)
}

func get(t *testing.T, s *Service, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHTTPEndpoints(t *testing.T) {
	kv := store.NewMemory()
	apply(t, kv,
		budget.SetIncome{Amount: decimal.NewFromInt(2000), Date: "2025-04-01"},
		budget.AddExpense{Expense: model.Expense{Category: "Food", Amount: decimal.NewFromInt(280), Date: "2025-04-01"}},
		budget.AddExpense{Expense: model.Expense{Category: "Housing", Amount: decimal.NewFromInt(50), Date: "2025-04-02"}},
	)
	s := newTestService(t, kv)
	s.pollOnce()

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	rec = get(t, s, "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Summary struct {
			Overview map[string]any `json:"overview"`
		} `json:"summary"`
		PollCount int `json:"poll_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 1, status.PollCount)
	assert.EqualValues(t, 2000, status.Summary.Overview["income"])
	assert.EqualValues(t, 330, status.Summary.Overview["total_spent"])

	rec = get(t, s, "/v1/alerts")
	var alerts []model.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "warning:Food", alerts[0].ID)

	rec = get(t, s, "/v1/expenses?limit=1")
	var expenses []model.Expense
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &expenses))
	require.Len(t, expenses, 1)
	assert.Equal(t, "Housing", expenses[0].Category)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/v1/expenses?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/v1/history?since=April").Code)

	rec = get(t, s, "/v1/history")
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = get(t, s, "/v1/events")
	var events []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 1)
}

func TestHistoryFromSQLite(t *testing.T) {
	db, err := store.Open(t.TempDir() + "/budget.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	apply(t, db, budget.SetIncome{Amount: decimal.NewFromInt(500), Date: "2025-04-02"})
	s := New(Config{Log: zerolog.Nop()}, func() (*session.Session, func() error, error) {
		sess, err := session.Open(db, session.WithClock(func() time.Time { return testNow }))
		return sess, func() error { return nil }, err
	})
	s.pollOnce()

	var days []store.DailySnapshot
	require.NoError(t, json.Unmarshal(get(t, s, "/v1/history?since=2025-04-01").Body.Bytes(), &days))
	require.Len(t, days, 1)
	assert.Equal(t, "2025-04-02", days[0].Day)
	assert.Equal(t, "500", days[0].Income.String())
}

func TestWriteSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSSE(rec, Event{ID: 7, Type: "budget_delta"})
	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, "id: 7\nevent: budget_delta\ndata: {"))
	assert.True(t, strings.HasSuffix(out, "}\n\n"))
}
