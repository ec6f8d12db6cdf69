package push

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeUserRepo struct {
	tokens []string
	err    error
}

func (f *fakeUserRepo) ActiveDeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	return f.tokens, f.err
}

func (f *fakeUserRepo) DisplayName(ctx context.Context, userID int64) (string, error) {
	return "", nil
}

type fakeSender struct {
	failTokens map[string]bool
	topicErr   error

	devices []string
	topics  []string
}

func (f *fakeSender) SendToDevice(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	f.devices = append(f.devices, deviceToken)
	if f.failTokens[deviceToken] {
		return errors.New("unregistered token")
	}
	return nil
}

func (f *fakeSender) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	f.topics = append(f.topics, topic)
	return f.topicErr
}

func TestGatewayNoActiveDevices(t *testing.T) {
	g := NewGateway(zap.NewNop(), &fakeUserRepo{}, &fakeSender{})

	outcome := g.SendToUser(context.Background(), 101, "t", "b", nil)
	if outcome.Delivered {
		t.Fatal("expected failed outcome without devices")
	}
	if outcome.ErrorMessage != "no active devices" {
		t.Errorf("unexpected error message %q", outcome.ErrorMessage)
	}
}

func TestGatewayPartialDeliveryCounts(t *testing.T) {
	sender := &fakeSender{failTokens: map[string]bool{"bad": true}}
	g := NewGateway(zap.NewNop(), &fakeUserRepo{tokens: []string{"bad", "good"}}, sender)

	outcome := g.SendToUser(context.Background(), 101, "t", "b", nil)
	if !outcome.Delivered {
		t.Fatal("expected delivered outcome when at least one device succeeds")
	}
	if len(sender.devices) != 2 {
		t.Errorf("expected fanout to both devices, got %v", sender.devices)
	}
}

func TestGatewayAllDevicesFail(t *testing.T) {
	sender := &fakeSender{failTokens: map[string]bool{"a": true, "b": true}}
	g := NewGateway(zap.NewNop(), &fakeUserRepo{tokens: []string{"a", "b"}}, sender)

	outcome := g.SendToUser(context.Background(), 101, "t", "b", nil)
	if outcome.Delivered {
		t.Fatal("expected failed outcome when every device fails")
	}
	if !strings.Contains(outcome.ErrorMessage, "all devices failed") {
		t.Errorf("unexpected error message %q", outcome.ErrorMessage)
	}
}

func TestGatewayDeviceLookupFailure(t *testing.T) {
	g := NewGateway(zap.NewNop(), &fakeUserRepo{err: errors.New("db down")}, &fakeSender{})

	outcome := g.SendToUser(context.Background(), 101, "t", "b", nil)
	if outcome.Delivered {
		t.Fatal("expected failed outcome on lookup error")
	}
	if !strings.Contains(outcome.ErrorMessage, "device lookup failed") {
		t.Errorf("unexpected error message %q", outcome.ErrorMessage)
	}
}

func TestGatewayOrgAdminTopic(t *testing.T) {
	sender := &fakeSender{}
	g := NewGateway(zap.NewNop(), &fakeUserRepo{}, sender)

	outcome := g.SendToOrgAdmins(context.Background(), 7, "t", "b", nil)
	if !outcome.Delivered {
		t.Fatal("expected delivered outcome")
	}
	if len(sender.topics) != 1 || sender.topics[0] != "org_7_alerts" {
		t.Errorf("unexpected topic %v", sender.topics)
	}
}

func TestGatewayNilSender(t *testing.T) {
	g := NewGateway(zap.NewNop(), &fakeUserRepo{tokens: []string{"a"}}, nil)

	if outcome := g.SendToUser(context.Background(), 101, "t", "b", nil); outcome.Delivered {
		t.Error("expected failed outcome without a configured sender")
	}
	if outcome := g.SendToOrgAdmins(context.Background(), 7, "t", "b", nil); outcome.Delivered {
		t.Error("expected failed outcome without a configured sender")
	}
}
