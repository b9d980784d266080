package notification

import (
	"context"
	"fmt"

	"townhall/utils"

	"firebase.google.com/go/v4/messaging"
)

// PushReport tallies the per-token outcome of one multicast send.
type PushReport struct {
	SuccessCount int
	FailureCount int
	FailedTokens []string
}

// PushSender delivers one notification to many device tokens in a single
// multicast call. Delivery is best-effort: callers must never block record
// writes on its outcome.
type PushSender interface {
	// Available reports whether the push provider is configured.
	Available() bool
	// SendMulticast sends title/body plus a string-keyed payload to the
	// given tokens and returns the per-token tally.
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*PushReport, error)
}

// FCMPushSender is the production PushSender over Firebase Cloud Messaging.
type FCMPushSender struct{}

func NewFCMPushSender() *FCMPushSender {
	return &FCMPushSender{}
}

func (s *FCMPushSender) Available() bool {
	return utils.FCMClient != nil
}

// SendMulticast sends one FCM multicast message to all tokens at once.
func (s *FCMPushSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (*PushReport, error) {
	if utils.FCMClient == nil {
		return nil, fmt.Errorf("push provider is not configured")
	}
	if len(tokens) == 0 {
		return &PushReport{}, nil
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	br, err := utils.FCMClient.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast: %w", err)
	}

	report := &PushReport{
		SuccessCount: br.SuccessCount,
		FailureCount: br.FailureCount,
	}
	for i, resp := range br.Responses {
		if !resp.Success && i < len(tokens) {
			report.FailedTokens = append(report.FailedTokens, tokens[i])
		}
	}
	return report, nil
}
