package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/pkg/mailer"
	mailtpl "github.com/oksasatya/go-gis-markers/pkg/mailer/templates"
)

// NotifyService turns domain events into user-facing email.
type NotifyService struct {
	Mailer     mailer.Sender
	Logger     *logrus.Logger
	AppName    string
	SupportURL string
}

func NewNotifyService(m mailer.Sender, logger *logrus.Logger, appName, supportURL string) *NotifyService {
	return &NotifyService{Mailer: m, Logger: logger, AppName: appName, SupportURL: supportURL}
}

// DecodeEvent parses a message body produced by RabbitEvents.
func DecodeEvent(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}

// Handle sends the email for e, if any. Events without a notification are
// acknowledged as handled.
func (s *NotifyService) Handle(ctx context.Context, e Event) error {
	switch e.Type {
	case EventUserRegistered:
		return s.welcome(ctx, e)
	default:
		if s.Logger != nil {
			s.Logger.WithField("event", e.Type).Debug("no notification for event")
		}
		return nil
	}
}

func (s *NotifyService) welcome(ctx context.Context, e Event) error {
	email, _ := e.Data["email"].(string)
	if email == "" {
		return nil
	}
	username, _ := e.Data["username"].(string)

	data := mailtpl.NewEmailData(username, email,
		mailtpl.WithAppName(s.AppName),
		mailtpl.WithSupportURL(s.SupportURL),
		mailtpl.WithTime(e.OccurredAt),
	)
	subject, text, html, err := mailtpl.Render(mailtpl.Welcome, data)
	if err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	if err := s.Mailer.Send(ctx, mailer.EmailJob{To: email, Subject: subject, Text: text, HTML: html}); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("username", username).Info("welcome email sent")
	}
	return nil
}
