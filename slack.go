package main

import (
	"github.com/slack-go/slack"
)

// slackAPI is the slice of the Slack client the notifier needs.
type slackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier mirrors interview alerts and the run summary to a Slack
// channel. Optional: the Runner holds a nil notifier when Slack is not
// configured.
type SlackNotifier struct {
	api       slackAPI
	channelID string
}

func NewSlackNotifier(cfg Config) *SlackNotifier {
	if !cfg.SlackConfigured() {
		return nil
	}
	return &SlackNotifier{
		api:       slack.New(cfg.SlackBotToken),
		channelID: cfg.SlackChannelID,
	}
}

func (n *SlackNotifier) Notify(text string) error {
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(text, false))
	return err
}
