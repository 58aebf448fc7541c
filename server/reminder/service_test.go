package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonV666/neyro-secretar/server/calendar"
)

var testLoc = time.FixedZone("YEKT", 5*60*60)

var testNow = time.Date(2025, 9, 3, 12, 0, 0, 0, testLoc)

// mockNotifier records delivered messages.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (n *mockNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return context.DeadlineExceeded
	}
	n.messages = append(n.messages, message)
	return nil
}

func newTestService(notifier *mockNotifier) *Service {
	svc := NewService(NewMemoryStore(), notifier, 15*time.Minute, testLoc)
	return svc.WithNow(func() time.Time { return testNow })
}

func TestCreateForEvent_LeadTime(t *testing.T) {
	svc := newTestService(&mockNotifier{})

	ev := calendar.Event{
		ID:    "e1",
		Title: "созвон",
		Start: testNow.Add(2 * time.Hour),
	}
	r, err := svc.CreateForEvent(context.Background(), ev)
	require.NoError(t, err)

	require.Equal(t, StatusPending, r.Status)
	require.True(t, r.FireAt.Equal(ev.Start.Add(-15*time.Minute)))
	require.Contains(t, r.Message, "созвон")
	require.Contains(t, r.Message, "(в 14:00)")
}

func TestCreateForEvent_LeadAlreadyElapsed(t *testing.T) {
	notifier := &mockNotifier{}
	svc := newTestService(notifier)

	// Event in 5 minutes, lead is 15: the nominal fire time is in the
	// past, so the reminder becomes due immediately.
	ev := calendar.Event{ID: "e1", Title: "созвон", Start: testNow.Add(5 * time.Minute)}
	r, err := svc.CreateForEvent(context.Background(), ev)
	require.NoError(t, err)
	require.True(t, r.FireAt.Equal(testNow))

	sent, err := svc.ProcessDue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, notifier.messages, 1)
}

func TestProcessDue(t *testing.T) {
	notifier := &mockNotifier{}
	svc := newTestService(notifier)

	due := calendar.Event{ID: "e1", Title: "оплатить хостинг", Start: testNow.Add(10 * time.Minute)}
	notDue := calendar.Event{ID: "e2", Title: "созвон", Start: testNow.Add(3 * time.Hour)}

	_, err := svc.CreateForEvent(context.Background(), due)
	require.NoError(t, err)
	later, err := svc.CreateForEvent(context.Background(), notDue)
	require.NoError(t, err)

	sent, err := svc.ProcessDue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, notifier.messages, 1)
	require.Contains(t, notifier.messages[0], "оплатить хостинг")

	// The future reminder stays pending, the delivered one never fires
	// again.
	stored, err := svc.store.Get(context.Background(), later.UID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)

	sent, err = svc.ProcessDue(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
}

func TestProcessDue_DeliveryFailure(t *testing.T) {
	notifier := &mockNotifier{fail: true}
	svc := newTestService(notifier)

	ev := calendar.Event{ID: "e1", Title: "созвон", Start: testNow.Add(time.Minute)}
	r, err := svc.CreateForEvent(context.Background(), ev)
	require.NoError(t, err)

	sent, err := svc.ProcessDue(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)

	stored, err := svc.store.Get(context.Background(), r.UID)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, stored.Status)
}

func TestCancelByEvent(t *testing.T) {
	notifier := &mockNotifier{}
	svc := newTestService(notifier)

	ev := calendar.Event{ID: "e1", Title: "созвон", Start: testNow.Add(time.Minute)}
	r, err := svc.CreateForEvent(context.Background(), ev)
	require.NoError(t, err)

	require.NoError(t, svc.CancelByEvent(context.Background(), "e1"))

	stored, err := svc.store.Get(context.Background(), r.UID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, stored.Status)

	sent, err := svc.ProcessDue(context.Background())
	require.NoError(t, err)
	require.Zero(t, sent)
}
