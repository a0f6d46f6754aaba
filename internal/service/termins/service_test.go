package termins

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"notat/internal/domain"
	"notat/internal/feedback"
	"notat/internal/notify"
)

type fakeDocs struct {
	mu    sync.Mutex
	items []domain.Termin
	saves [][]domain.Termin
	err   error
}

func (f *fakeDocs) LoadTermins(ctx context.Context) ([]domain.Termin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.err
}

func (f *fakeDocs) SaveTermins(ctx context.Context, items []domain.Termin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	snapshot := make([]domain.Termin, len(items))
	copy(snapshot, items)
	f.saves = append(f.saves, snapshot)
	return nil
}

func (f *fakeDocs) LoadNotes(ctx context.Context) ([]domain.Note, error) { return nil, nil }
func (f *fakeDocs) SaveNotes(ctx context.Context, items []domain.Note) error {
	return nil
}
func (f *fakeDocs) LoadProfile(ctx context.Context) (map[string]string, error) { return nil, nil }
func (f *fakeDocs) SaveProfile(ctx context.Context, profile map[string]string) error {
	return nil
}

func (f *fakeDocs) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeDocs) lastSave() []domain.Termin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

type fakeCenter struct {
	mu        sync.Mutex
	scheduled []notify.Request
	cancelled []string
}

func (f *fakeCenter) RequestAuthorization(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeCenter) Schedule(ctx context.Context, req notify.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, req)
	return nil
}

func (f *fakeCenter) Cancel(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, ids...)
	return nil
}

func (f *fakeCenter) scheduledFor(id uuid.UUID) []notify.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Request
	for _, req := range f.scheduled {
		if strings.Contains(req.ID, id.String()) {
			out = append(out, req)
		}
	}
	return out
}

type fixture struct {
	svc    *Service
	docs   *fakeDocs
	center *fakeCenter
	events []feedback.Event
}

func newFixture(t *testing.T, opts notify.Options) *fixture {
	t.Helper()
	f := &fixture{docs: &fakeDocs{}, center: &fakeCenter{}}
	f.svc = New(Config{
		Documents: f.docs,
		Scheduler: notify.NewScheduler(f.center, nil),
		Reminders: opts,
		Signal:    func(e feedback.Event) { f.events = append(f.events, e) },
		SaveDelay: 25 * time.Millisecond,
	})
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestCreate_InsertsSortedAndPersists(t *testing.T) {
	f := newFixture(t, notify.Options{HourBefore: true})
	ctx := context.Background()

	later, err := f.svc.Create(ctx, CreateInput{Title: "later", DateTime: time.Now().Add(48 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	sooner, err := f.svc.Create(ctx, CreateInput{Title: "sooner", DateTime: time.Now().Add(24 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	items := f.svc.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != sooner.ID || items[1].ID != later.ID {
		t.Fatalf("order = [%q, %q], want [sooner, later]", items[0].Title, items[1].Title)
	}

	waitFor(t, func() bool { return f.docs.saveCount() >= 1 })
	if got := len(f.docs.lastSave()); got != 2 {
		t.Fatalf("persisted %d items, want 2", got)
	}

	if got := f.center.scheduledFor(sooner.ID); len(got) != 1 {
		t.Fatalf("scheduled %d alerts for new item, want 1", len(got))
	}
	if len(f.events) == 0 || f.events[len(f.events)-1] != feedback.Success {
		t.Fatalf("events = %v, want trailing success", f.events)
	}
}

func TestCreate_TrimsTitle(t *testing.T) {
	f := newFixture(t, notify.Options{})

	item, err := f.svc.Create(context.Background(), CreateInput{Title: "  dentist  ", DateTime: time.Now().Add(time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if item.Title != "dentist" {
		t.Fatalf("title = %q, want %q", item.Title, "dentist")
	}
}

func TestCreate_BlankTitleIsValidationError(t *testing.T) {
	f := newFixture(t, notify.Options{})

	_, err := f.svc.Create(context.Background(), CreateInput{Title: "   ", DateTime: time.Now(), Pro: true})
	if err == nil {
		t.Fatalf("expected error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(f.svc.Items()) != 0 {
		t.Fatalf("blank title was inserted")
	}
}

func TestCreate_QuotaBlocksEleventhForFreeUser(t *testing.T) {
	f := newFixture(t, notify.Options{})
	ctx := context.Background()

	for i := 0; i < FreeLimit; i++ {
		in := CreateInput{Title: "t", DateTime: time.Now().Add(time.Duration(i) * time.Hour), Pro: true}
		if _, err := f.svc.Create(ctx, in); err != nil {
			t.Fatalf("Create %d error: %v", i, err)
		}
	}
	// Mixed completion state must not matter: completed items still count.
	f.svc.ToggleComplete(ctx, f.svc.Items()[0].ID)

	_, err := f.svc.Create(ctx, CreateInput{Title: "one too many", DateTime: time.Now(), Pro: false})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("error = %v, want %v", err, ErrQuotaExceeded)
	}
	if got := len(f.svc.Items()); got != FreeLimit {
		t.Fatalf("len = %d, want %d", got, FreeLimit)
	}
	if !f.svc.UpgradePrompt() {
		t.Fatalf("upgrade prompt not raised")
	}
	if f.events[len(f.events)-1] != feedback.Warning {
		t.Fatalf("events = %v, want trailing warning", f.events)
	}

	// The same create succeeds with entitlement.
	if _, err := f.svc.Create(ctx, CreateInput{Title: "eleventh", DateTime: time.Now(), Pro: true}); err != nil {
		t.Fatalf("pro create error: %v", err)
	}
	if got := len(f.svc.Items()); got != FreeLimit+1 {
		t.Fatalf("len = %d, want %d", got, FreeLimit+1)
	}
}

func TestDismissUpgradePrompt(t *testing.T) {
	f := newFixture(t, notify.Options{})
	ctx := context.Background()

	for i := 0; i < FreeLimit; i++ {
		if _, err := f.svc.Create(ctx, CreateInput{Title: "t", DateTime: time.Now(), Pro: true}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	_, _ = f.svc.Create(ctx, CreateInput{Title: "t", DateTime: time.Now(), Pro: false})
	if !f.svc.UpgradePrompt() {
		t.Fatalf("upgrade prompt not raised")
	}
	f.svc.DismissUpgradePrompt()
	if f.svc.UpgradePrompt() {
		t.Fatalf("upgrade prompt still raised after dismiss")
	}
}

func TestUpdate_OverwritesAndReschedules(t *testing.T) {
	f := newFixture(t, notify.Options{HourBefore: true})
	ctx := context.Background()

	item, err := f.svc.Create(ctx, CreateInput{Title: "old", DateTime: time.Now().Add(24 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	note := "updated note"
	newTime := time.Now().Add(72 * time.Hour)
	f.svc.Update(ctx, item.ID, UpdateInput{Title: "new", DateTime: newTime, Note: &note, Reminder: domain.MinutesBefore(15)})

	items := f.svc.Items()
	if items[0].Title != "new" || items[0].Note == nil || *items[0].Note != note {
		t.Fatalf("update not applied: %+v", items[0])
	}
	if !items[0].DateTime.Equal(newTime) {
		t.Fatalf("dateTime = %v, want %v", items[0].DateTime, newTime)
	}
	if items[0].CreatedAt != item.CreatedAt {
		t.Fatalf("createdAt changed on update")
	}

	if len(f.center.cancelled) != len(notify.Kinds) {
		t.Fatalf("cancelled %d identifiers, want %d", len(f.center.cancelled), len(notify.Kinds))
	}
	// Hour-before plus the new custom reminder.
	if got := f.center.scheduledFor(item.ID); len(got) != 3 {
		t.Fatalf("alerts after update = %d, want 3 (1 create + 2 reschedule)", len(got))
	}
}

func TestUpdate_UnknownIDIsNoop(t *testing.T) {
	f := newFixture(t, notify.Options{})
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateInput{Title: "keep", DateTime: time.Now(), Pro: true}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	f.svc.Update(ctx, uuid.New(), UpdateInput{Title: "ghost", DateTime: time.Now()})

	items := f.svc.Items()
	if len(items) != 1 || items[0].Title != "keep" {
		t.Fatalf("collection changed by unknown-id update: %+v", items)
	}
	if len(f.center.cancelled) != 0 {
		t.Fatalf("unknown-id update cancelled alerts")
	}
}

func TestDelete_RemovesAndCancels(t *testing.T) {
	f := newFixture(t, notify.Options{HourBefore: true})
	ctx := context.Background()

	item, err := f.svc.Create(ctx, CreateInput{Title: "gone", DateTime: time.Now().Add(24 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	f.svc.Delete(ctx, item.ID)

	if len(f.svc.Items()) != 0 {
		t.Fatalf("item not removed")
	}
	for _, kind := range notify.Kinds {
		want := notify.Identifier(item.ID, kind)
		found := false
		for _, cancelled := range f.center.cancelled {
			if cancelled == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("identifier %q not cancelled", want)
		}
	}

	// Unknown id afterwards: silent no-op.
	before := len(f.center.cancelled)
	f.svc.Delete(ctx, item.ID)
	if len(f.center.cancelled) != before {
		t.Fatalf("repeat delete cancelled again")
	}
}

func TestToggleComplete_CancelsThenReschedulesOnUncomplete(t *testing.T) {
	f := newFixture(t, notify.Options{HourBefore: true})
	ctx := context.Background()

	item, err := f.svc.Create(ctx, CreateInput{Title: "x", DateTime: time.Now().Add(24 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	created := len(f.center.scheduledFor(item.ID))

	f.svc.ToggleComplete(ctx, item.ID)
	if !f.svc.Items()[0].IsCompleted {
		t.Fatalf("item not completed")
	}
	if got := len(f.center.scheduledFor(item.ID)); got != created {
		t.Fatalf("completing scheduled new alerts")
	}

	f.svc.ToggleComplete(ctx, item.ID)
	if f.svc.Items()[0].IsCompleted {
		t.Fatalf("item still completed after second toggle")
	}
	if got := len(f.center.scheduledFor(item.ID)); got != created+1 {
		t.Fatalf("un-completing did not reschedule: %d alerts, want %d", got, created+1)
	}
}

func TestDebounce_CoalescesRapidUpdatesIntoOneWrite(t *testing.T) {
	f := newFixture(t, notify.Options{})
	ctx := context.Background()

	item, err := f.svc.Create(ctx, CreateInput{Title: "v0", DateTime: time.Now().Add(time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	waitFor(t, func() bool { return f.docs.saveCount() == 1 })

	for i := 1; i <= 5; i++ {
		f.svc.Update(ctx, item.ID, UpdateInput{Title: "v" + string(rune('0'+i)), DateTime: item.DateTime})
	}

	waitFor(t, func() bool { return f.docs.saveCount() == 2 })
	time.Sleep(80 * time.Millisecond)
	if got := f.docs.saveCount(); got != 2 {
		t.Fatalf("saves = %d, want 2 (create + coalesced updates)", got)
	}
	if got := f.docs.lastSave()[0].Title; got != "v5" {
		t.Fatalf("persisted title = %q, want %q", got, "v5")
	}
}

func TestFlush_WritesPendingImmediately(t *testing.T) {
	f := newFixture(t, notify.Options{})

	if _, err := f.svc.Create(context.Background(), CreateInput{Title: "x", DateTime: time.Now(), Pro: true}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	f.svc.Flush()
	if got := f.docs.saveCount(); got != 1 {
		t.Fatalf("saves = %d, want 1 right after flush", got)
	}
}

func TestClearAll_WritesEmptyImmediately(t *testing.T) {
	f := newFixture(t, notify.Options{})
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateInput{Title: "x", DateTime: time.Now(), Pro: true}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := f.svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll error: %v", err)
	}
	if len(f.svc.Items()) != 0 {
		t.Fatalf("collection not emptied")
	}
	if got := f.docs.saveCount(); got != 1 {
		t.Fatalf("saves = %d, want immediate empty write", got)
	}
	if got := len(f.docs.lastSave()); got != 0 {
		t.Fatalf("persisted %d items, want 0", got)
	}

	// The pending debounced save from Create was discarded.
	time.Sleep(80 * time.Millisecond)
	if got := f.docs.saveCount(); got != 1 {
		t.Fatalf("stale debounced save fired after ClearAll")
	}
}

func TestLoad_ReplacesAndSorts(t *testing.T) {
	now := time.Now()
	mk := func(title string, dt time.Time, done bool) domain.Termin {
		it, err := domain.NewTermin(title, dt, nil, nil)
		if err != nil {
			t.Fatalf("NewTermin error: %v", err)
		}
		it.IsCompleted = done
		return it
	}

	f := newFixture(t, notify.Options{})
	f.docs.items = []domain.Termin{
		mk("future", now.Add(time.Hour), false),
		mk("done", now.Add(2*time.Hour), true),
		mk("overdue", now.Add(-time.Hour), false),
	}

	if err := f.svc.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	items := f.svc.Items()
	want := []string{"overdue", "future", "done"}
	for i, title := range want {
		if items[i].Title != title {
			t.Fatalf("position %d = %q, want %q", i, items[i].Title, title)
		}
	}
}

func TestScheduleAll_SkipsCompleted(t *testing.T) {
	f := newFixture(t, notify.Options{HourBefore: true})
	ctx := context.Background()

	open, err := f.svc.Create(ctx, CreateInput{Title: "open", DateTime: time.Now().Add(24 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	done, err := f.svc.Create(ctx, CreateInput{Title: "done", DateTime: time.Now().Add(24 * time.Hour), Pro: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	f.svc.ToggleComplete(ctx, done.ID)

	openBefore := len(f.center.scheduledFor(open.ID))
	doneBefore := len(f.center.scheduledFor(done.ID))
	f.svc.ScheduleAll(ctx)

	if got := len(f.center.scheduledFor(open.ID)); got != openBefore+1 {
		t.Fatalf("open item not rescheduled")
	}
	if got := len(f.center.scheduledFor(done.ID)); got != doneBefore {
		t.Fatalf("completed item was rescheduled")
	}
}
