package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Channel delivers a message to a recipient. Send must respect ctx.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient, message string) error
}

// TwilioMessenger is the part of the Twilio REST client the WhatsApp channel needs.
type TwilioMessenger interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioChannel sends WhatsApp messages through Twilio.
type TwilioChannel struct {
	api  TwilioMessenger
	from string
}

func NewTwilioChannel(api TwilioMessenger, from string) *TwilioChannel {
	return &TwilioChannel{api: api, from: from}
}

func (t *TwilioChannel) Name() string { return "twilio" }

func (t *TwilioChannel) Send(ctx context.Context, recipient, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:+" + Digits(recipient))
	params.SetFrom("whatsapp:" + t.from)
	params.SetBody(message)

	// the Twilio client takes no context, so the call is raced against ctx
	done := make(chan error, 1)
	go func() {
		resp, err := t.api.CreateMessage(params)
		if err == nil && resp != nil && resp.ErrorMessage != nil {
			err = errors.New(*resp.ErrorMessage)
		}
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CallMeBotChannel uses the CallMeBot WhatsApp HTTP API.
type CallMeBotChannel struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewCallMeBotChannel(endpoint, apiKey string, client *http.Client) *CallMeBotChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &CallMeBotChannel{endpoint: endpoint, apiKey: apiKey, client: client}
}

func (c *CallMeBotChannel) Name() string { return "callmebot" }

func (c *CallMeBotChannel) Send(ctx context.Context, recipient, message string) error {
	q := url.Values{}
	q.Set("phone", "+"+Digits(recipient))
	q.Set("text", message)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return doExpectOK(c.client, req)
}

// WebhookPayload is the body POSTed to the notification webhook.
type WebhookPayload struct {
	To        string `json:"to"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// WebhookChannel posts the message to a relay that owns the WhatsApp integration.
// Bodies are signed with HMAC-SHA256 in X-Signature.
type WebhookChannel struct {
	url    string
	secret string
	client *http.Client
	now    func() time.Time
}

func NewWebhookChannel(webhookURL, secret string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookChannel{url: webhookURL, secret: secret, client: client, now: time.Now}
}

func (w *WebhookChannel) Name() string { return "webhook" }

// SignPayload returns the hex HMAC-SHA256 of body.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (w *WebhookChannel) Send(ctx context.Context, recipient, message string) error {
	body, err := json.Marshal(WebhookPayload{
		To:        recipient,
		Message:   message,
		Timestamp: w.now().UTC().Format(time.RFC3339),
		Type:      "appointment_booking",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set("X-Signature", SignPayload(w.secret, body))
	}
	return doExpectOK(w.client, req)
}

func doExpectOK(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// MailSender is satisfied by *gomail.Dialer.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel mails the message to a fixed clinic inbox. The recipient phone
// number is only mentioned in the subject.
type EmailChannel struct {
	sender MailSender
	from   string
	to     string
}

func NewEmailChannel(sender MailSender, from, to string) *EmailChannel {
	return &EmailChannel{sender: sender, from: from, to: to}
}

func (e *EmailChannel) Name() string { return "email" }

func (e *EmailChannel) Send(ctx context.Context, recipient, message string) error {
	return e.SendTo(ctx, e.to, "New appointment booking for "+recipient, message)
}

// SendTo mails an arbitrary address, used by the event worker for patient confirmations.
func (e *EmailChannel) SendTo(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- e.sender.DialAndSend(m) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("error sending email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogChannel is the fallback: the message is written to the structured log so an
// operator can still act on it, and the console opens the deep link.
type LogChannel struct {
	logger *zerolog.Logger
}

func NewLogChannel(logger *zerolog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Name() string { return "log" }

func (l *LogChannel) Send(ctx context.Context, recipient, message string) error {
	if l.logger == nil {
		return errors.New("no logger configured")
	}
	l.logger.Info().
		Str("channel", "whatsapp").
		Str("to", recipient).
		Str("message", message).
		Msg("booking notification")
	return nil
}
