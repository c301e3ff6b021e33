package slack_test

import (
	"testing"

	sl "github.com/jonny/kubot/internal/adapter/outbound/notification/slack"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// Block construction is covered by the template package tests.
// Actual Slack API calls are not made here.

func TestNewNotifier(t *testing.T) {
	n := sl.NewNotifier(sl.Config{BotToken: "xoxb-test"})
	if n == nil {
		t.Fatal("expected notifier instance")
	}
	var _ outbound.Notifier = n
}
