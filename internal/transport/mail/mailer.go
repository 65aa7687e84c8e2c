package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/resendlabs/resend-go"
	"github.com/sirupsen/logrus"

	"github.com/timexa/timexa-backend/internal/metrics"
)

// ResendMailer sends transactional email through the Resend API.
type ResendMailer struct {
	client    *resend.Client
	from      string
	log       *logrus.Logger
	collector *metrics.Collector
}

func NewResendMailer(apiKey, from string, log *logrus.Logger, collector *metrics.Collector) *ResendMailer {
	if log == nil {
		log = logrus.New()
	}
	m := &ResendMailer{
		from:      strings.TrimSpace(from),
		log:       log,
		collector: collector,
	}
	if strings.TrimSpace(apiKey) != "" {
		m.client = resend.NewClient(apiKey)
	}
	return m
}

func (m *ResendMailer) SendWelcome(ctx context.Context, email, name string) error {
	if name == "" {
		name = "there"
	}
	subject := "Welcome to Timexa!"
	html := fmt.Sprintf(
		"<h2>Welcome, %s!</h2><p>Your Timexa account is ready. Sign in to start tracking your attendance.</p>",
		name,
	)
	text := fmt.Sprintf("Welcome, %s! Your Timexa account is ready. Sign in to start tracking your attendance.", name)

	err := m.send(ctx, email, subject, html, text)
	m.collector.RecordEmail("welcome", err)
	return err
}

func (m *ResendMailer) SendOTP(ctx context.Context, email, otp string, expiresIn time.Duration) error {
	minutes := int(expiresIn / time.Minute)
	subject := "Your Timexa OTP Code"
	html := fmt.Sprintf(
		"<p>Your one-time code is:</p><h2>%s</h2><p>It expires in %d minutes. If you did not request this, ignore this email.</p>",
		otp, minutes,
	)
	text := fmt.Sprintf("Your one-time code is %s. It expires in %d minutes. If you did not request this, ignore this email.", otp, minutes)

	err := m.send(ctx, email, subject, html, text)
	m.collector.RecordEmail("otp", err)
	return err
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html, text string) error {
	if m.client == nil || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}

	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return err
	}

	m.log.WithFields(logrus.Fields{
		"email_id": sent.Id,
		"to":       to,
		"subject":  subject,
	}).Info("email sent")
	return nil
}
