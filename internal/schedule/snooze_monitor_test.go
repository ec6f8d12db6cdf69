package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/push"
	"KnocksterSafety/internal/repository"
)

type fakeSnoozeLogRepo struct {
	entries []*model.SafetySnoozeLog
	err     error
}

func (f *fakeSnoozeLogRepo) Append(ctx context.Context, entry *model.SafetySnoozeLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeUserRepo struct {
	name    string
	nameErr error
}

func (f *fakeUserRepo) ActiveDeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	return nil, nil
}

func (f *fakeUserRepo) DisplayName(ctx context.Context, userID int64) (string, error) {
	if f.nameErr != nil {
		return "", f.nameErr
	}
	return f.name, nil
}

func snoozedCheckin(id int64, count int) *model.SafetyCheckin {
	lastSnooze := mondayNine.Add(-10 * time.Minute)
	return &model.SafetyCheckin{
		BaseModel:    model.BaseModel{ID: id},
		PublicID:     id * 100,
		TimingID:     11,
		UserID:       101,
		OrgID:        7,
		CheckinDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:       model.CheckinStatusSnoozed,
		SnoozeCount:  count,
		LastSnoozeAt: &lastSnooze,
	}
}

func newTestMonitor(
	checkins *fakeCheckinRepo,
	snoozeLogs *fakeSnoozeLogRepo,
	users *fakeUserRepo,
	dispatcher *fakeDispatcher,
	events *fakeEvents,
) *SnoozeMonitor {
	m := NewSnoozeMonitor(zap.NewNop(), checkins, snoozeLogs, users, dispatcher, events, nil,
		5*time.Minute, 3, time.Minute)
	m.now = func() time.Time { return mondayNine }
	return m
}

func TestSnoozeMonitorSendsReminder(t *testing.T) {
	var advancedID int64
	var advancedFrom int

	checkins := &fakeCheckinRepo{
		listSnoozed: func(cutoff time.Time) ([]*model.SafetyCheckin, error) {
			want := mondayNine.Add(-5 * time.Minute)
			if !cutoff.Equal(want) {
				t.Errorf("expected cutoff %v, got %v", want, cutoff)
			}
			return []*model.SafetyCheckin{snoozedCheckin(1, 1)}, nil
		},
		advanceSnooze: func(id int64, fromCount int, at time.Time) (bool, error) {
			advancedID = id
			advancedFrom = fromCount
			return true, nil
		},
	}
	snoozeLogs := &fakeSnoozeLogRepo{}
	dispatcher := &fakeDispatcher{outcome: push.Outcome{Delivered: true}}
	events := &fakeEvents{}

	m := newTestMonitor(checkins, snoozeLogs, &fakeUserRepo{name: "Alice"}, dispatcher, events)

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeReminded); got != 1 {
		t.Fatalf("expected 1 reminded, got %+v", report.Items)
	}

	if len(dispatcher.reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(dispatcher.reminders))
	}
	if dispatcher.remaining[0] != 2 {
		t.Errorf("expected 2 snoozes remaining, got %d", dispatcher.remaining[0])
	}

	if len(snoozeLogs.entries) != 1 {
		t.Fatalf("expected 1 snooze log entry, got %d", len(snoozeLogs.entries))
	}
	entry := snoozeLogs.entries[0]
	if entry.SnoozeNumber != 2 {
		t.Errorf("expected snooze number 2, got %d", entry.SnoozeNumber)
	}
	if !entry.NotificationDelivered {
		t.Error("expected delivered flag on snooze log")
	}

	if advancedID != 1 || advancedFrom != 1 {
		t.Errorf("expected advance from count 1 on checkin 1, got id=%d from=%d", advancedID, advancedFrom)
	}

	if len(events.msgs) != 1 || events.msgs[0].Event != model.CheckinEventReminderSent {
		t.Errorf("expected one reminder_sent event, got %+v", events.msgs)
	}
	if events.msgs[0].SnoozeCount != 2 {
		t.Errorf("expected event snooze count 2, got %d", events.msgs[0].SnoozeCount)
	}
}

func TestSnoozeMonitorRecordsFailedDelivery(t *testing.T) {
	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return []*model.SafetyCheckin{snoozedCheckin(1, 0)}, nil
		},
	}
	snoozeLogs := &fakeSnoozeLogRepo{}
	dispatcher := &fakeDispatcher{outcome: push.Outcome{Delivered: false, ErrorMessage: "no active devices"}}

	m := newTestMonitor(checkins, snoozeLogs, &fakeUserRepo{}, dispatcher, &fakeEvents{})

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// 投递失败不中断循环，记录在案后照常推进计数
	if got := report.Count(OutcomeReminded); got != 1 {
		t.Fatalf("expected 1 reminded, got %+v", report.Items)
	}
	if len(snoozeLogs.entries) != 1 || snoozeLogs.entries[0].NotificationDelivered {
		t.Errorf("expected undelivered snooze log, got %+v", snoozeLogs.entries)
	}
}

func TestSnoozeMonitorReminderRaced(t *testing.T) {
	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return []*model.SafetyCheckin{snoozedCheckin(1, 1)}, nil
		},
		advanceSnooze: func(int64, int, time.Time) (bool, error) { return false, nil },
	}
	events := &fakeEvents{}

	m := newTestMonitor(checkins, &fakeSnoozeLogRepo{}, &fakeUserRepo{}, &fakeDispatcher{}, events)

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeSkippedRaced); got != 1 {
		t.Errorf("expected 1 skipped_raced, got %+v", report.Items)
	}
	if len(events.msgs) != 0 {
		t.Error("expected no event when advance loses the race")
	}
}

func TestSnoozeMonitorEscalates(t *testing.T) {
	var gotAlert *model.SafetyAlert

	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return []*model.SafetyCheckin{snoozedCheckin(1, 3)}, nil
		},
		escalate: func(id int64, alert *model.SafetyAlert) (bool, error) {
			gotAlert = alert
			return true, nil
		},
	}
	dispatcher := &fakeDispatcher{outcome: push.Outcome{Delivered: true}}
	events := &fakeEvents{}

	m := newTestMonitor(checkins, &fakeSnoozeLogRepo{}, &fakeUserRepo{name: "Alice Chen"}, dispatcher, events)

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeEscalated); got != 1 {
		t.Fatalf("expected 1 escalated, got %+v", report.Items)
	}

	if gotAlert == nil {
		t.Fatal("expected alert passed to escalation")
	}
	if gotAlert.AlertType != model.AlertTypeNoResponseAfterSnooze {
		t.Errorf("unexpected alert type %q", gotAlert.AlertType)
	}
	if gotAlert.Priority != model.AlertPriorityHigh {
		t.Errorf("unexpected priority %q", gotAlert.Priority)
	}
	if gotAlert.AlertStatus != model.AlertStatusPending {
		t.Errorf("unexpected alert status %q", gotAlert.AlertStatus)
	}
	if gotAlert.CheckinID != 1 || gotAlert.UserID != 101 || gotAlert.OrgID != 7 {
		t.Errorf("unexpected alert identity: %+v", gotAlert)
	}
	if gotAlert.PublicID == 0 {
		t.Error("expected non-zero alert public id")
	}

	if len(dispatcher.alerts) != 1 {
		t.Fatalf("expected 1 admin alert, got %d", len(dispatcher.alerts))
	}
	if dispatcher.alertName != "Alice Chen" {
		t.Errorf("expected resolved user name, got %q", dispatcher.alertName)
	}
	if dispatcher.alertID != gotAlert.PublicID {
		t.Error("expected alert public id forwarded to notifier")
	}

	if len(events.msgs) != 1 || events.msgs[0].Event != model.CheckinEventEscalated {
		t.Errorf("expected one escalated event, got %+v", events.msgs)
	}
	if events.msgs[0].AlertID != gotAlert.PublicID {
		t.Error("expected alert id on escalated event")
	}
}

func TestSnoozeMonitorEscalationRaced(t *testing.T) {
	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return []*model.SafetyCheckin{snoozedCheckin(1, 3)}, nil
		},
		escalate: func(int64, *model.SafetyAlert) (bool, error) { return false, nil },
	}
	dispatcher := &fakeDispatcher{}

	m := newTestMonitor(checkins, &fakeSnoozeLogRepo{}, &fakeUserRepo{}, dispatcher, &fakeEvents{})

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeSkippedRaced); got != 1 {
		t.Errorf("expected 1 skipped_raced, got %+v", report.Items)
	}
	if len(dispatcher.alerts) != 0 {
		t.Error("expected no admin alert when escalation loses the race")
	}
}

func TestSnoozeMonitorUnknownUserFallback(t *testing.T) {
	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return []*model.SafetyCheckin{snoozedCheckin(1, 3)}, nil
		},
	}
	dispatcher := &fakeDispatcher{}
	users := &fakeUserRepo{nameErr: errors.New("profile query failed")}

	m := newTestMonitor(checkins, &fakeSnoozeLogRepo{}, users, dispatcher, &fakeEvents{})

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := report.Count(OutcomeEscalated); got != 1 {
		t.Fatalf("expected escalation despite name lookup failure, got %+v", report.Items)
	}
	if dispatcher.alertName != repository.UnknownUserName {
		t.Errorf("expected fallback name %q, got %q", repository.UnknownUserName, dispatcher.alertName)
	}
}

func TestSnoozeMonitorItemFailureIsolation(t *testing.T) {
	first := snoozedCheckin(1, 1)
	second := snoozedCheckin(2, 1)

	failOnce := true
	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return []*model.SafetyCheckin{first, second}, nil
		},
		advanceSnooze: func(id int64, fromCount int, at time.Time) (bool, error) {
			if failOnce {
				failOnce = false
				return false, errors.New("write failed")
			}
			return true, nil
		},
	}

	m := newTestMonitor(checkins, &fakeSnoozeLogRepo{}, &fakeUserRepo{}, &fakeDispatcher{}, &fakeEvents{})

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("expected item failure to stay inside the report, got: %v", err)
	}

	if got := report.Count(OutcomeFailed); got != 1 {
		t.Errorf("expected 1 failed item, got %+v", report.Items)
	}
	if got := report.Count(OutcomeReminded); got != 1 {
		t.Errorf("expected second item to still be reminded, got %+v", report.Items)
	}
}

func TestSnoozeMonitorListError(t *testing.T) {
	checkins := &fakeCheckinRepo{
		listSnoozed: func(time.Time) ([]*model.SafetyCheckin, error) {
			return nil, errors.New("db down")
		},
	}

	m := newTestMonitor(checkins, &fakeSnoozeLogRepo{}, &fakeUserRepo{}, &fakeDispatcher{}, &fakeEvents{})

	if _, err := m.Run(context.Background()); err == nil {
		t.Fatal("expected error when snoozed query fails")
	}
}
