package notification

import (
	"context"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelsFromConfig(t *testing.T) {
	cfg := &config.Config{NotifyTimeout: time.Second}
	assert.Empty(t, ChannelsFromConfig(cfg))

	cfg.TwilioAccountSID = "AC123"
	cfg.TwilioAuthToken = "token"
	cfg.TwilioWhatsAppFrom = "+14155238886"
	cfg.CallMeBotAPIKey = "key"
	cfg.CallMeBotURL = "https://api.callmebot.com/whatsapp.php"
	cfg.NotifyWebhookURL = "https://relay.example.com/hook"
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPPort = 587
	cfg.NotifyEmailTo = "desk@example.com"

	var names []string
	for _, ch := range ChannelsFromConfig(cfg) {
		names = append(names, ch.Name())
	}
	assert.Equal(t, []string{"twilio", "callmebot", "webhook", "email"}, names)
}

func TestEmailFromConfig(t *testing.T) {
	assert.Nil(t, EmailFromConfig(&config.Config{}))

	ch := EmailFromConfig(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "clinic@example.com"})
	require.NotNil(t, ch)
	assert.Equal(t, "clinic@example.com", ch.from)
}

func TestNewDispatcherFromConfig_Defaults(t *testing.T) {
	cfg := &config.Config{
		WhatsAppNumber: "+919138136007",
		WhatsAppLink:   "https://wa.me",
		ClinicName:     "MyPhysioFriend",
		NotifyTimeout:  time.Second,
	}
	d := NewDispatcherFromConfig(cfg, nil, nil)
	assert.Equal(t, []string{"log"}, d.Channels())

	res := d.Notify(context.Background(), sampleBooking())
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, "+919138136007", res.Recipient)
}

func TestConnectMongoStore_Disabled(t *testing.T) {
	store, closeFn, err := ConnectMongoStore(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()
}
