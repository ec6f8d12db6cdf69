package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/push"
	"KnocksterSafety/pkg/snowflake"
)

func init() {
	_ = snowflake.Init(1, 1)
}

// Fakes

type fakeTimingRepo struct {
	timings []*model.SafetyTiming
	err     error

	gotMinute string
}

func (f *fakeTimingRepo) ListFiringAt(ctx context.Context, clockMinute string) ([]*model.SafetyTiming, error) {
	f.gotMinute = clockMinute
	return f.timings, f.err
}

type fakeCheckinRepo struct {
	createIfAbsent func(*model.SafetyCheckin) (bool, error)
	listSnoozed    func(time.Time) ([]*model.SafetyCheckin, error)
	escalate       func(int64, *model.SafetyAlert) (bool, error)
	advanceSnooze  func(int64, int, time.Time) (bool, error)

	created []*model.SafetyCheckin
}

func (f *fakeCheckinRepo) CreateIfAbsent(ctx context.Context, checkin *model.SafetyCheckin) (bool, error) {
	f.created = append(f.created, checkin)
	if f.createIfAbsent != nil {
		return f.createIfAbsent(checkin)
	}
	return true, nil
}

func (f *fakeCheckinRepo) ListSnoozedBefore(ctx context.Context, cutoff time.Time) ([]*model.SafetyCheckin, error) {
	if f.listSnoozed != nil {
		return f.listSnoozed(cutoff)
	}
	return nil, nil
}

func (f *fakeCheckinRepo) Escalate(ctx context.Context, checkinID int64, alert *model.SafetyAlert) (bool, error) {
	if f.escalate != nil {
		return f.escalate(checkinID, alert)
	}
	return true, nil
}

func (f *fakeCheckinRepo) AdvanceSnooze(ctx context.Context, checkinID int64, fromCount int, at time.Time) (bool, error) {
	if f.advanceSnooze != nil {
		return f.advanceSnooze(checkinID, fromCount, at)
	}
	return true, nil
}

func (f *fakeCheckinRepo) Snooze(ctx context.Context, publicID int64, at time.Time) (bool, error) {
	return true, nil
}

func (f *fakeCheckinRepo) Respond(ctx context.Context, publicID int64, at time.Time) (bool, error) {
	return true, nil
}

func (f *fakeCheckinRepo) FindByPublicID(ctx context.Context, publicID int64) (*model.SafetyCheckin, error) {
	return nil, errors.New("not implemented")
}

type initialCall struct {
	checkin *model.SafetyCheckin
	label   string
}

type fakeDispatcher struct {
	outcome push.Outcome

	initials  []initialCall
	reminders []*model.SafetyCheckin
	remaining []int
	alerts    []*model.SafetyCheckin
	alertName string
	alertID   int64
}

func (f *fakeDispatcher) SendInitialCheckin(ctx context.Context, checkin *model.SafetyCheckin, label string) push.Outcome {
	f.initials = append(f.initials, initialCall{checkin: checkin, label: label})
	return f.outcome
}

func (f *fakeDispatcher) SendSnoozeReminder(ctx context.Context, checkin *model.SafetyCheckin, remaining int) push.Outcome {
	f.reminders = append(f.reminders, checkin)
	f.remaining = append(f.remaining, remaining)
	return f.outcome
}

func (f *fakeDispatcher) SendNoResponseAlert(ctx context.Context, checkin *model.SafetyCheckin, userName string, alertPublicID int64) push.Outcome {
	f.alerts = append(f.alerts, checkin)
	f.alertName = userName
	f.alertID = alertPublicID
	return f.outcome
}

type fakeEvents struct {
	msgs []model.CheckinEventMessage
	err  error
}

func (f *fakeEvents) PublishCheckinEvent(ctx context.Context, msg model.CheckinEventMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type fakeLocker struct {
	acquired bool
	err      error

	locks   []string
	unlocks []string
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	f.locks = append(f.locks, key)
	return f.acquired, f.err
}

func (f *fakeLocker) Unlock(ctx context.Context, key string) error {
	f.unlocks = append(f.unlocks, key)
	return nil
}

// 2026-03-02 09:00 UTC 是周一
var mondayNine = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestEvaluator(timings *fakeTimingRepo, checkins *fakeCheckinRepo, dispatcher *fakeDispatcher, events *fakeEvents, locker Locker) *TimingEvaluator {
	e := NewTimingEvaluator(zap.NewNop(), timings, checkins, dispatcher, events, locker, time.UTC, time.Minute)
	e.now = func() time.Time { return mondayNine }
	return e
}

func TestTimingEvaluatorCreatesCheckin(t *testing.T) {
	timings := &fakeTimingRepo{timings: []*model.SafetyTiming{
		{
			BaseModel:  model.BaseModel{ID: 11},
			UserID:     101,
			OrgID:      7,
			Label:      "morning",
			Time:       "09:00:00",
			ActiveDays: `["monday","friday"]`,
			IsActive:   true,
		},
	}}
	checkins := &fakeCheckinRepo{}
	dispatcher := &fakeDispatcher{outcome: push.Outcome{Delivered: true}}
	events := &fakeEvents{}

	e := newTestEvaluator(timings, checkins, dispatcher, events, nil)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if timings.gotMinute != "09:00" {
		t.Errorf("expected query for minute 09:00, got %q", timings.gotMinute)
	}
	if got := report.Count(OutcomeCreated); got != 1 {
		t.Fatalf("expected 1 created, got %d (items: %+v)", got, report.Items)
	}

	if len(checkins.created) != 1 {
		t.Fatalf("expected 1 checkin created, got %d", len(checkins.created))
	}
	created := checkins.created[0]
	if created.Status != model.CheckinStatusPending {
		t.Errorf("expected pending status, got %q", created.Status)
	}
	if created.SnoozeCount != 0 {
		t.Errorf("expected snooze count 0, got %d", created.SnoozeCount)
	}
	if created.TimingID != 11 || created.UserID != 101 || created.OrgID != 7 {
		t.Errorf("unexpected checkin identity: %+v", created)
	}
	if !created.CheckinDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected checkin date: %v", created.CheckinDate)
	}
	if created.PublicID == 0 {
		t.Error("expected non-zero public id")
	}

	if len(dispatcher.initials) != 1 {
		t.Fatalf("expected 1 initial notification, got %d", len(dispatcher.initials))
	}
	if dispatcher.initials[0].label != "morning" {
		t.Errorf("expected label morning, got %q", dispatcher.initials[0].label)
	}

	if len(events.msgs) != 1 || events.msgs[0].Event != model.CheckinEventCreated {
		t.Errorf("expected one created event, got %+v", events.msgs)
	}
}

func TestTimingEvaluatorSkipsInactiveDay(t *testing.T) {
	timings := &fakeTimingRepo{timings: []*model.SafetyTiming{
		{BaseModel: model.BaseModel{ID: 11}, ActiveDays: `["tuesday"]`, IsActive: true},
	}}
	checkins := &fakeCheckinRepo{}
	dispatcher := &fakeDispatcher{}

	e := newTestEvaluator(timings, checkins, dispatcher, &fakeEvents{}, nil)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeSkippedDay); got != 1 {
		t.Errorf("expected 1 skipped_day, got %+v", report.Items)
	}
	if len(checkins.created) != 0 {
		t.Error("expected no checkin created on inactive day")
	}
	if len(dispatcher.initials) != 0 {
		t.Error("expected no notification on inactive day")
	}
}

func TestTimingEvaluatorSkipsExisting(t *testing.T) {
	timings := &fakeTimingRepo{timings: []*model.SafetyTiming{
		{BaseModel: model.BaseModel{ID: 11}, ActiveDays: `["monday"]`, IsActive: true},
	}}
	checkins := &fakeCheckinRepo{
		createIfAbsent: func(*model.SafetyCheckin) (bool, error) { return false, nil },
	}
	dispatcher := &fakeDispatcher{}

	e := newTestEvaluator(timings, checkins, dispatcher, &fakeEvents{}, nil)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeSkippedExists); got != 1 {
		t.Errorf("expected 1 skipped_exists, got %+v", report.Items)
	}
	if len(dispatcher.initials) != 0 {
		t.Error("expected no duplicate notification for existing checkin")
	}
}

func TestTimingEvaluatorMalformedActiveDays(t *testing.T) {
	timings := &fakeTimingRepo{timings: []*model.SafetyTiming{
		{BaseModel: model.BaseModel{ID: 11}, ActiveDays: `not-json`, IsActive: true},
		{BaseModel: model.BaseModel{ID: 12}, ActiveDays: `["monday"]`, IsActive: true},
	}}
	checkins := &fakeCheckinRepo{}
	dispatcher := &fakeDispatcher{}

	e := newTestEvaluator(timings, checkins, dispatcher, &fakeEvents{}, nil)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("expected run to survive malformed timing, got error: %v", err)
	}

	if got := report.Count(OutcomeFailed); got != 1 {
		t.Errorf("expected 1 failed item, got %+v", report.Items)
	}
	if got := report.Count(OutcomeCreated); got != 1 {
		t.Errorf("expected healthy timing to still be processed, got %+v", report.Items)
	}
}

func TestTimingEvaluatorListError(t *testing.T) {
	timings := &fakeTimingRepo{err: errors.New("db down")}

	e := newTestEvaluator(timings, &fakeCheckinRepo{}, &fakeDispatcher{}, &fakeEvents{}, nil)

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("expected error when timing query fails")
	}
}

func TestTimingEvaluatorLockHeld(t *testing.T) {
	timings := &fakeTimingRepo{timings: []*model.SafetyTiming{
		{BaseModel: model.BaseModel{ID: 11}, ActiveDays: `["monday"]`, IsActive: true},
	}}
	locker := &fakeLocker{acquired: false}

	e := newTestEvaluator(timings, &fakeCheckinRepo{}, &fakeDispatcher{}, &fakeEvents{}, locker)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("expected lock contention to be a clean skip, got error: %v", err)
	}
	if report != nil {
		t.Errorf("expected nil report on skipped run, got %+v", report)
	}
	if timings.gotMinute != "" {
		t.Error("expected no timing query when lock is held elsewhere")
	}
}

func TestTimingEvaluatorLockErrorProceeds(t *testing.T) {
	timings := &fakeTimingRepo{timings: []*model.SafetyTiming{
		{BaseModel: model.BaseModel{ID: 11}, ActiveDays: `["monday"]`, IsActive: true},
	}}
	locker := &fakeLocker{err: errors.New("redis down")}

	e := newTestEvaluator(timings, &fakeCheckinRepo{}, &fakeDispatcher{}, &fakeEvents{}, locker)

	report, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("expected run to proceed when lock service is down, got: %v", err)
	}
	if report == nil || report.Count(OutcomeCreated) != 1 {
		t.Errorf("expected run to proceed without lock, got %+v", report)
	}
	if len(locker.unlocks) != 0 {
		t.Error("expected no unlock after failed acquire")
	}
}

func TestTimingEvaluatorReleasesLock(t *testing.T) {
	locker := &fakeLocker{acquired: true}

	e := newTestEvaluator(&fakeTimingRepo{}, &fakeCheckinRepo{}, &fakeDispatcher{}, &fakeEvents{}, locker)

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(locker.unlocks) != 1 || locker.unlocks[0] != timingEvaluatorLockKey {
		t.Errorf("expected lock release for %q, got %v", timingEvaluatorLockKey, locker.unlocks)
	}
}

func TestTimingEvaluatorRejectsReentry(t *testing.T) {
	e := newTestEvaluator(&fakeTimingRepo{}, &fakeCheckinRepo{}, &fakeDispatcher{}, &fakeEvents{}, nil)

	e.jobMutex.Lock()
	e.jobRunning = true
	e.jobMutex.Unlock()

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("expected reentry to be rejected")
	}
}
