package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application's configuration values.
type Config struct {
	AppName  string `json:"appname" envconfig:"APPNAME" default:"MyPhysioFriend"`
	AppEnv   string `json:"appenv" envconfig:"APPENV" default:"development"`
	AppPort  uint16 `json:"appport" envconfig:"APPPORT" default:"4000"`
	GinMode  string `json:"ginmode" envconfig:"GINMODE" default:"debug"`
	LogLevel string `json:"loglevel" envconfig:"LOG_LEVEL" default:"info"`

	DBDriver string `json:"dbdriver" envconfig:"DBDRIVER" default:"mysql"`
	DBHost   string `json:"dbhost" envconfig:"DBHOST" default:"localhost"`
	DBPort   uint16 `json:"dbport" envconfig:"DBPORT" default:"3306"`
	DBName   string `json:"dbname" envconfig:"DBNAME" default:"physiofriend"`
	DBUSER   string `json:"dbuser" envconfig:"DBUSER"`
	DBPass   string `json:"-" envconfig:"DBPASS"`

	RedisEnabled  bool   `json:"redis_enabled" envconfig:"REDIS_ENABLED" default:"false"`
	RedisAddr     string `json:"redis_addr" envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `json:"-" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" envconfig:"REDIS_DB" default:"0"`

	JWTSecret     string        `json:"-" envconfig:"JWTSECRET"`
	TokenTTL      time.Duration `json:"token_ttl" envconfig:"TOKEN_TTL" default:"24h"`
	AdminEmail    string        `json:"admin_email" envconfig:"ADMIN_EMAIL"`
	AdminPassword string        `json:"-" envconfig:"ADMIN_PASSWORD"`
	CORSOrigins   []string      `json:"cors_origins" envconfig:"CORS_ORIGINS" default:"*"`

	ClinicName     string        `json:"clinic_name" envconfig:"CLINIC_NAME" default:"MyPhysioFriend"`
	PortalURL      string        `json:"portal_url" envconfig:"PORTAL_URL" default:"https://myphysiofriend.com"`
	WhatsAppNumber string        `json:"whatsapp_number" envconfig:"WHATSAPP_NUMBER" default:"+919138136007"`
	WhatsAppLink   string        `json:"whatsapp_link" envconfig:"WHATSAPP_LINK_BASE" default:"https://wa.me"`
	NotifyTimeout  time.Duration `json:"notify_timeout" envconfig:"NOTIFY_TIMEOUT" default:"5s"`

	TwilioAccountSID   string `json:"-" envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `json:"-" envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom string `json:"twilio_whatsapp_from" envconfig:"TWILIO_WHATSAPP_FROM"`
	CallMeBotAPIKey    string `json:"-" envconfig:"CALLMEBOT_API_KEY"`
	CallMeBotURL       string `json:"callmebot_url" envconfig:"CALLMEBOT_URL" default:"https://api.callmebot.com/whatsapp.php"`
	NotifyWebhookURL   string `json:"notify_webhook_url" envconfig:"NOTIFY_WEBHOOK_URL"`
	NotifyWebhookKey   string `json:"-" envconfig:"NOTIFY_WEBHOOK_SECRET"`
	NotifyEmailTo      string `json:"notify_email_to" envconfig:"NOTIFY_EMAIL_TO"`

	SMTPHost string `json:"smtp_host" envconfig:"SMTP_HOST"`
	SMTPPort int    `json:"smtp_port" envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `json:"smtp_user" envconfig:"SMTP_USER"`
	SMTPPass string `json:"-" envconfig:"SMTP_PASS"`
	SMTPFrom string `json:"smtp_from" envconfig:"SMTP_FROM"`

	RazorpayKeyID     string `json:"razorpay_key_id" envconfig:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `json:"-" envconfig:"RAZORPAY_KEY_SECRET"`
	Currency          string `json:"currency" envconfig:"CURRENCY" default:"INR"`

	RabbitURL      string `json:"-" envconfig:"RABBIT_URL"`
	RabbitExchange string `json:"rabbit_exchange" envconfig:"RABBIT_EXCHANGE" default:"appointment.events"`
	RabbitQueue    string `json:"rabbit_queue" envconfig:"RABBIT_QUEUE" default:"appointment.notifications"`

	MongoURI string `json:"-" envconfig:"MONGO_URI"`
	MongoDB  string `json:"mongo_db" envconfig:"MONGO_DB" default:"physiofriend"`

	OTLPEndpoint string `json:"otlp_endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	GeoIPDBPath  string `json:"geoip_db_path" envconfig:"GEOIP_DB_PATH"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env is fine, the process environment still applies.
		_ = godotenv.Load()

		var cfg Config
		if err := envconfig.Process("", &cfg); err != nil {
			log.Fatal().Err(err).Msg("error loading configuration")
		}
		config = &cfg
	})
	return config
}

// ResetConfigForTest drops the cached Config so the next LoadConfig call re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

// IsTest reports whether the application runs with APPENV=test.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// DSN builds the data source name for the configured SQL driver.
func (c *Config) DSN() (string, error) {
	switch c.DBDriver {
	case "", "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true", c.DBUSER, c.DBPass, c.DBHost, c.DBPort, c.DBName), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", c.DBHost, c.DBPort, c.DBUSER, c.DBPass, c.DBName), nil
	default:
		return "", fmt.Errorf("unsupported DBDRIVER %q", c.DBDriver)
	}
}

// ConnectDatabase opens the SQL store. In the test environment an in-memory sqlite database is used.
func ConnectDatabase() (*gorm.DB, error) {
	cfg := LoadConfig()
	gormCfg := &gorm.Config{
		// Unique violations surface as gorm.ErrDuplicatedKey on every driver.
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	if cfg.IsTest() {
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", cfg.DBName)
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	if cfg.DBDriver == "postgres" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}
