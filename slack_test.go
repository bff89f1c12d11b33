package main

import (
	"testing"

	"github.com/slack-go/slack"
)

type fakeSlackAPI struct {
	channels []string
	texts    int
}

func (f *fakeSlackAPI) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	f.texts += len(options)
	return channelID, "ts", nil
}

func TestSlackNotifierPostsToConfiguredChannel(t *testing.T) {
	api := &fakeSlackAPI{}
	n := &SlackNotifier{api: api, channelID: "C123"}

	if err := n.Notify("triage done"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if len(api.channels) != 1 || api.channels[0] != "C123" {
		t.Fatalf("unexpected channels: %v", api.channels)
	}
}

func TestNewSlackNotifierDisabledWithoutConfig(t *testing.T) {
	if n := NewSlackNotifier(Config{}); n != nil {
		t.Fatal("notifier should be nil when slack is not configured")
	}
	if n := NewSlackNotifier(Config{SlackBotToken: "xoxb", SlackChannelID: "C1"}); n == nil {
		t.Fatal("notifier should be constructed when slack is configured")
	}
}
