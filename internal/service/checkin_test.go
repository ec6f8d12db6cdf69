package service

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/pkg/errors"
)

type fakeCheckinRepo struct {
	snoozeApplied  bool
	respondApplied bool
	found          *model.SafetyCheckin
	findErr        error

	snoozedID   int64
	respondedID int64
}

func (f *fakeCheckinRepo) CreateIfAbsent(ctx context.Context, checkin *model.SafetyCheckin) (bool, error) {
	return false, nil
}

func (f *fakeCheckinRepo) ListSnoozedBefore(ctx context.Context, cutoff time.Time) ([]*model.SafetyCheckin, error) {
	return nil, nil
}

func (f *fakeCheckinRepo) Escalate(ctx context.Context, checkinID int64, alert *model.SafetyAlert) (bool, error) {
	return false, nil
}

func (f *fakeCheckinRepo) AdvanceSnooze(ctx context.Context, checkinID int64, fromCount int, at time.Time) (bool, error) {
	return false, nil
}

func (f *fakeCheckinRepo) Snooze(ctx context.Context, publicID int64, at time.Time) (bool, error) {
	f.snoozedID = publicID
	return f.snoozeApplied, nil
}

func (f *fakeCheckinRepo) Respond(ctx context.Context, publicID int64, at time.Time) (bool, error) {
	f.respondedID = publicID
	return f.respondApplied, nil
}

func (f *fakeCheckinRepo) FindByPublicID(ctx context.Context, publicID int64) (*model.SafetyCheckin, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.found, nil
}

func TestCheckinServiceSnooze(t *testing.T) {
	repo := &fakeCheckinRepo{snoozeApplied: true}
	svc := NewCheckinService(zap.NewNop(), repo)

	if err := svc.Snooze(context.Background(), 500, time.Now()); err != nil {
		t.Fatalf("Snooze returned error: %v", err)
	}
	if repo.snoozedID != 500 {
		t.Errorf("expected snooze on public id 500, got %d", repo.snoozedID)
	}
}

func TestCheckinServiceSnoozeNotActionable(t *testing.T) {
	repo := &fakeCheckinRepo{snoozeApplied: false}
	svc := NewCheckinService(zap.NewNop(), repo)

	err := svc.Snooze(context.Background(), 500, time.Now())
	if !goerrors.Is(err, errors.CheckinNotActionable) {
		t.Fatalf("expected CheckinNotActionable, got %v", err)
	}
}

func TestCheckinServiceRespondNotActionable(t *testing.T) {
	repo := &fakeCheckinRepo{respondApplied: false}
	svc := NewCheckinService(zap.NewNop(), repo)

	err := svc.Respond(context.Background(), 500, time.Now())
	if !goerrors.Is(err, errors.CheckinNotActionable) {
		t.Fatalf("expected CheckinNotActionable, got %v", err)
	}
}

func TestCheckinServiceGetNotFound(t *testing.T) {
	repo := &fakeCheckinRepo{findErr: gorm.ErrRecordNotFound}
	svc := NewCheckinService(zap.NewNop(), repo)

	_, err := svc.Get(context.Background(), 500)
	if !goerrors.Is(err, errors.CheckinNotFound) {
		t.Fatalf("expected CheckinNotFound, got %v", err)
	}
}

func TestCheckinServiceGet(t *testing.T) {
	want := &model.SafetyCheckin{PublicID: 500, Status: model.CheckinStatusPending}
	repo := &fakeCheckinRepo{found: want}
	svc := NewCheckinService(zap.NewNop(), repo)

	got, err := svc.Get(context.Background(), 500)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != want {
		t.Errorf("expected checkin %+v, got %+v", want, got)
	}
}
