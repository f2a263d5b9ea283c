package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"draw_notification_bot/internal/app"
	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/domain/notification"
	"draw_notification_bot/internal/infra/state"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransport is a mock implementation of the notification.Transport interface
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Name() string {
	return "mock"
}

func (m *MockTransport) Send(ctx context.Context, msg notification.Message, recipient string) error {
	args := m.Called(ctx, msg, recipient)
	return args.Error(0)
}

// staticSource returns fixed entries or a fixed error.
type staticSource struct {
	name    string
	entries []draw.RawEntry
	err     error
	calls   int
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) FetchEntries(context.Context) ([]draw.RawEntry, error) {
	s.calls++
	return s.entries, s.err
}

// memoryStore is an in-memory notification.StateStore.
type memoryStore struct {
	state    *notification.State
	readErr  error
	writeErr error
	writes   int
}

func (s *memoryStore) Read(context.Context) (*notification.State, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.state == nil {
		return nil, nil
	}
	st := *s.state
	return &st, nil
}

func (s *memoryStore) Write(_ context.Context, st notification.State) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.state = &st
	return nil
}

func day(s string) time.Time {
	t, err := time.Parse(draw.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(number, date string) draw.RawEntry {
	return draw.RawEntry{
		"drawNumber": number,
		"drawDate":   date,
		"drawName":   "Canadian Experience Class",
		"drawSize":   "3,000",
		"drawCRS":    "518",
	}
}

func stateAt(date string) *memoryStore {
	return &memoryStore{state: &notification.State{LastNotifiedDate: day(date)}}
}

func newNotifier(sources []draw.Source, store notification.StateStore, transport notification.Transport) (*app.DrawUpdateNotifier, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	n := app.NewDrawUpdateNotifier(sources, store, transport, logrus.NewEntry(logger), app.Options{
		Recipient:       "alerts@example.com",
		DispatchTimeout: time.Second,
	})
	return n, hook
}

func TestRun_ScenarioA_FirstRunNotifiesAndWritesStateFile(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "last_sent.json")
	store := state.NewFileStore(statePath)
	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("350", "2025-06-01")}}

	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, "alerts@example.com").Return(nil).Once()

	n, hook := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), false)

	assert.Equal(t, app.OutcomeNotified, res.Outcome)
	assert.True(t, res.Succeeded())
	transport.AssertExpectations(t)

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_draw_date":"2025-06-01"}`, string(data))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "notified", last.Data["outcome"])
	assert.Equal(t, 350, last.Data["draw_number"])
}

func TestRun_ScenarioB_SameDateIsNotNeeded(t *testing.T) {
	store := stateAt("2025-06-01")
	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("350", "2025-06-01")}}
	transport := new(MockTransport)

	n, _ := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), false)

	assert.Equal(t, app.OutcomeNotNeeded, res.Outcome)
	assert.Equal(t, 0, res.Outcome.ExitCode())
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, store.writes)
}

func TestRun_ScenarioC_NewerDrawAdvancesState(t *testing.T) {
	store := stateAt("2025-06-01")
	src := &staticSource{name: "live", entries: []draw.RawEntry{
		entry("350", "2025-06-01"),
		entry("351", "2025-06-15"),
	}}
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.MatchedBy(func(msg notification.Message) bool {
		return assert.ObjectsAreEqual(app.ComposeNotification(draw.Record{
			DrawNumber: 351,
			DrawDate:   day("2025-06-15"),
			Category:   "Canadian Experience Class",
			ITAsIssued: 3000,
			CRSScore:   518,
		}), msg)
	}), "alerts@example.com").Return(nil).Once()

	n, _ := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), false)

	assert.Equal(t, app.OutcomeNotified, res.Outcome)
	require.NotNil(t, res.Latest)
	assert.Equal(t, 351, res.Latest.DrawNumber)
	assert.Equal(t, day("2025-06-15"), store.state.LastNotifiedDate)
	transport.AssertExpectations(t)
}

func TestRun_ScenarioD_DispatchFailureLeavesStateUntouched(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "last_sent.json")
	store := state.NewFileStore(statePath)
	require.NoError(t, store.Write(context.Background(), notification.State{LastNotifiedDate: day("2025-06-01")}))
	before, err := os.ReadFile(statePath)
	require.NoError(t, err)

	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("351", "2025-06-15")}}
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("535 authentication failed"))

	n, _ := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), false)

	assert.Equal(t, app.OutcomeDispatchFailed, res.Outcome)
	assert.Contains(t, res.Reason, "535 authentication failed")
	assert.NotEqual(t, 0, res.Outcome.ExitCode())

	after, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_ScenarioE_ForceNotifiesWithoutMovingState(t *testing.T) {
	store := stateAt("2025-06-15")
	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("351", "2025-06-15")}}
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	n, _ := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), true)

	assert.Equal(t, app.OutcomeNotified, res.Outcome)
	assert.Equal(t, day("2025-06-15"), store.state.LastNotifiedDate)
	transport.AssertExpectations(t)
}

func TestRun_ForcedSendNeverMovesStateBackward(t *testing.T) {
	store := stateAt("2025-07-01")
	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("351", "2025-06-15")}}
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	n, _ := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), true)

	assert.Equal(t, app.OutcomeNotified, res.Outcome)
	assert.Equal(t, day("2025-07-01"), store.state.LastNotifiedDate)
	assert.Equal(t, 0, store.writes)
}

func TestRun_RepeatedRunsNotifyAtMostOnce(t *testing.T) {
	store := &memoryStore{}
	src := &staticSource{name: "live", entries: []draw.RawEntry{
		entry("351", "2025-06-15"),
		entry("349", "2025-05-28"),
	}}
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	notified := 0
	for i := 0; i < 5; i++ {
		// Fresh instance per run, as the CLI and scheduler do.
		n, _ := newNotifier([]draw.Source{src}, store, transport)
		if n.Run(context.Background(), false).Outcome == app.OutcomeNotified {
			notified++
		}
	}

	assert.Equal(t, 1, notified)
	transport.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, 1, store.writes)
}

func TestRun_StateWriteFailureIsDistinctOutcome(t *testing.T) {
	store := stateAt("2025-06-01")
	store.writeErr = errors.New("disk full")
	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("351", "2025-06-15")}}
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	n, hook := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), false)

	assert.Equal(t, app.OutcomeStateWriteFailed, res.Outcome)
	assert.Equal(t, 2, res.Outcome.ExitCode())
	assert.EqualError(t, res.Err, "disk full")
	transport.AssertExpectations(t)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRun_DataUnavailableWhenAllSourcesFail(t *testing.T) {
	store := stateAt("2025-06-01")
	primary := &staticSource{name: "live", err: errors.New("timeout")}
	fallback := &staticSource{name: "fallback", entries: []draw.RawEntry{{"drawNumber": "x"}}}
	transport := new(MockTransport)

	n, _ := newNotifier([]draw.Source{primary, fallback}, store, transport)
	res := n.Run(context.Background(), true)

	assert.Equal(t, app.OutcomeDataUnavailable, res.Outcome)
	assert.ErrorIs(t, res.Err, app.ErrDataUnavailable)
	assert.Nil(t, res.Latest)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, store.writes)
}

func TestLoadLatestRecords_FallsBackToSecondarySource(t *testing.T) {
	primary := &staticSource{name: "live", err: errors.New("503")}
	fallback := &staticSource{name: "fallback", entries: []draw.RawEntry{
		entry("350", "2025-06-01"),
		entry("350", "2025-06-03"),
		{"drawNumber": "bad"},
		entry("348", "2025-05-20"),
	}}

	n, hook := newNotifier([]draw.Source{primary, fallback}, &memoryStore{}, nil)
	records, err := n.LoadLatestRecords(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 350, records[0].DrawNumber)
	assert.Equal(t, day("2025-06-03"), records[0].DrawDate)
	assert.Equal(t, 348, records[1].DrawNumber)

	var warnedMalformed bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Dropping malformed draw entry" {
			warnedMalformed = true
		}
	}
	assert.True(t, warnedMalformed)
}

func TestLoadLatestRecords_PrimaryWinsWhenUsable(t *testing.T) {
	primary := &staticSource{name: "live", entries: []draw.RawEntry{entry("351", "2025-06-15")}}
	fallback := &staticSource{name: "fallback", entries: []draw.RawEntry{entry("340", "2025-03-01")}}

	n, _ := newNotifier([]draw.Source{primary, fallback}, &memoryStore{}, nil)
	records, err := n.LoadLatestRecords(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 351, records[0].DrawNumber)
	assert.Equal(t, 0, fallback.calls)
}

func TestLoadState_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		store *memoryStore
	}{
		{"absent", &memoryStore{}},
		{"unreadable", &memoryStore{readErr: state.ErrCorruptState}},
		{"zero date", &memoryStore{state: &notification.State{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := newNotifier(nil, tt.store, nil)
			st, err := n.LoadState(context.Background())
			require.NoError(t, err)
			assert.Equal(t, notification.DefaultState(), st)
		})
	}
}

func TestLoadState_CorruptFileFallsBackToDefault(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "last_sent.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o644))

	n, _ := newNotifier(nil, state.NewFileStore(statePath), nil)
	st, err := n.LoadState(context.Background())

	require.NoError(t, err)
	assert.Equal(t, notification.DefaultState(), st)
}

func TestRun_StoreOutageDoesNotResend(t *testing.T) {
	store := stateAt("2025-06-15")
	store.readErr = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	src := &staticSource{name: "live", entries: []draw.RawEntry{entry("351", "2025-06-15")}}
	transport := new(MockTransport)

	n, _ := newNotifier([]draw.Source{src}, store, transport)
	res := n.Run(context.Background(), false)

	assert.Equal(t, app.OutcomeStateReadFailed, res.Outcome)
	assert.Equal(t, 1, res.Outcome.ExitCode())
	assert.ErrorContains(t, res.Err, "connection refused")
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, store.writes)
}

func TestIsUpdateDue(t *testing.T) {
	st := notification.State{LastNotifiedDate: day("2025-06-01")}

	assert.False(t, app.IsUpdateDue(draw.Record{DrawDate: day("2025-05-31")}, st, false))
	assert.False(t, app.IsUpdateDue(draw.Record{DrawDate: day("2025-06-01")}, st, false))
	assert.True(t, app.IsUpdateDue(draw.Record{DrawDate: day("2025-06-02")}, st, false))
	assert.True(t, app.IsUpdateDue(draw.Record{DrawDate: day("2025-06-01")}, st, true))
	assert.True(t, app.IsUpdateDue(draw.Record{DrawDate: day("2025-05-31")}, st, true))
}

func TestOutcome_ExitCodes(t *testing.T) {
	assert.Equal(t, 0, app.OutcomeNotified.ExitCode())
	assert.Equal(t, 0, app.OutcomeNotNeeded.ExitCode())
	assert.Equal(t, 1, app.OutcomeDispatchFailed.ExitCode())
	assert.Equal(t, 1, app.OutcomeDataUnavailable.ExitCode())
	assert.Equal(t, 2, app.OutcomeStateWriteFailed.ExitCode())
	assert.Equal(t, 1, app.OutcomeStateReadFailed.ExitCode())
	assert.Equal(t, "data_unavailable", app.OutcomeDataUnavailable.String())
	assert.Equal(t, "state_read_failed", app.OutcomeStateReadFailed.String())
}
