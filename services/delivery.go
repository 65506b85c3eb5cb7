package services

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"gopkg.in/gomail.v2"

	"github.com/homelyeats/homelyeats_backend/models"
)

// PushSender delivers a notification to a device token
type PushSender interface {
	Send(ctx context.Context, token string, n *models.Notification) error
}

// Mailer delivers a plain text email
type Mailer interface {
	Send(to, subject, body string) error
}

// FCMSender pushes notifications through Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(ctx context.Context, app *firebase.App) (*FCMSender, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, n *models.Notification) error {
	_, err := s.client.Send(ctx, fcmMessage(token, n))
	return err
}

func fcmMessage(token string, n *models.Notification) *messaging.Message {
	data := map[string]string{
		"type":           string(n.Type),
		"notificationId": n.ID.Hex(),
		"timestamp":      n.CreatedAt.Format(time.RFC3339),
	}
	for key, value := range n.Data {
		if str, ok := value.(string); ok {
			data[key] = str
		} else {
			data[key] = fmt.Sprint(value)
		}
	}

	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "homelyeats_bookings",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Message,
					},
					Sound: "default",
				},
			},
		},
	}
}

// SMTPMailer sends email with gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
