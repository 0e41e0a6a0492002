package notification

import (
	"context"
	"net/http"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/go-gomail/gomail"
	"github.com/twilio/twilio-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

const mongoCollection = "notification_logs"

// ChannelsFromConfig builds the remote channels in dispatch order. Channels
// without credentials are left out.
func ChannelsFromConfig(cfg *config.Config) []Channel {
	var channels []Channel
	client := &http.Client{Timeout: cfg.NotifyTimeout}

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioWhatsAppFrom != "" {
		tc := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		channels = append(channels, NewTwilioChannel(tc.Api, cfg.TwilioWhatsAppFrom))
	}
	if cfg.CallMeBotAPIKey != "" {
		channels = append(channels, NewCallMeBotChannel(cfg.CallMeBotURL, cfg.CallMeBotAPIKey, client))
	}
	if cfg.NotifyWebhookURL != "" {
		channels = append(channels, NewWebhookChannel(cfg.NotifyWebhookURL, cfg.NotifyWebhookKey, client))
	}
	if email := EmailFromConfig(cfg); email != nil && cfg.NotifyEmailTo != "" {
		channels = append(channels, email)
	}
	return channels
}

// EmailFromConfig returns the SMTP channel, or nil when SMTP is not configured.
func EmailFromConfig(cfg *config.Config) *EmailChannel {
	if cfg.SMTPHost == "" {
		return nil
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return NewEmailChannel(dialer, from, cfg.NotifyEmailTo)
}

// ConnectMongoStore opens the MongoDB delivery log when MONGO_URI is set. The
// returned close function is safe to call when no store was opened.
func ConnectMongoStore(ctx context.Context, cfg *config.Config) (LogStore, func(), error) {
	if cfg.MongoURI == "" {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, func() {}, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, func() {}, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			util.Logger().Warn().Err(err).Msg("mongo disconnect failed")
		}
	}
	return NewMongoStore(client.Database(cfg.MongoDB).Collection(mongoCollection)), closeFn, nil
}

// NewDispatcherFromConfig wires the channels, the log fallback and the store.
// store may be nil, in which case the gorm store over db is used.
func NewDispatcherFromConfig(cfg *config.Config, db *gorm.DB, store LogStore) *Dispatcher {
	if store == nil && db != nil {
		store = NewGormStore(db)
	}
	return NewDispatcher(Options{
		Recipient: cfg.WhatsAppNumber,
		LinkBase:  cfg.WhatsAppLink,
		Template:  Template{ClinicName: cfg.ClinicName, PortalURL: cfg.PortalURL},
		Timeout:   cfg.NotifyTimeout,
		Fallback:  NewLogChannel(util.Logger()),
		Store:     store,
		Logger:    util.Logger(),
	}, ChannelsFromConfig(cfg)...)
}
