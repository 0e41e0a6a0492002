package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

// Options configures a Dispatcher.
type Options struct {
	Recipient string
	LinkBase  string
	Template  Template
	Timeout   time.Duration
	// Fallback runs after every channel failed. Its success yields OutcomeDegraded.
	Fallback Channel
	Store    LogStore
	Logger   *zerolog.Logger
}

// Dispatcher tries channels in order and stops at the first success.
type Dispatcher struct {
	opts     Options
	channels []Channel
}

func NewDispatcher(opts Options, channels ...Channel) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.LinkBase == "" {
		opts.LinkBase = "https://wa.me"
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return &Dispatcher{opts: opts, channels: channels}
}

// Channels lists the configured channel names in dispatch order, fallback included.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels)+1)
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	if d.opts.Fallback != nil {
		names = append(names, d.opts.Fallback.Name())
	}
	return names
}

func (d *Dispatcher) try(ctx context.Context, ch Channel, message string) Attempt {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	attempt := Attempt{Channel: ch.Name(), Success: true}
	if err := ch.Send(ctx, d.opts.Recipient, message); err != nil {
		attempt.Success = false
		attempt.Error = err.Error()
	}
	return attempt
}

// Notify formats the booking message and dispatches it. It never fails: the
// outcome is reported in the Result and the deep link is always set.
func (d *Dispatcher) Notify(ctx context.Context, b Booking) Result {
	message := d.opts.Template.FormatMessage(b)
	res := Result{
		Outcome:     OutcomeFailed,
		MessageText: message,
		DeepLinkURL: DeepLink(d.opts.LinkBase, d.opts.Recipient, message),
		Recipient:   d.opts.Recipient,
		Attempts:    []Attempt{},
	}

	for _, ch := range d.channels {
		attempt := d.try(ctx, ch, message)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Success {
			res.Outcome = OutcomeDelivered
			res.Channel = ch.Name()
			break
		}
		d.opts.Logger.Warn().Str("channel", ch.Name()).Str("error", attempt.Error).Msg("notification channel failed")
	}

	if res.Outcome != OutcomeDelivered && d.opts.Fallback != nil {
		attempt := d.try(ctx, d.opts.Fallback, message)
		res.Attempts = append(res.Attempts, attempt)
		if attempt.Success {
			res.Outcome = OutcomeDegraded
			res.Channel = d.opts.Fallback.Name()
		}
	}
	res.Delivered = res.Outcome == OutcomeDelivered

	if d.opts.Store != nil {
		// the booking is already committed; the log write must outlive a cancelled request
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
		defer cancel()
		if err := d.opts.Store.Save(saveCtx, newRecord(b.AppointmentID, res)); err != nil {
			d.opts.Logger.Error().Err(err).Uint("appointment_id", b.AppointmentID).Msg("failed to persist notification log")
		}
	}
	return res
}
