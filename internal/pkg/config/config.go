package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type StoreMode string

const (
	StorePostgres StoreMode = "postgres"
	StoreMetadata StoreMode = "metadata"
)

type MailProvider string

const (
	MailResend MailProvider = "resend"
	MailSMTP   MailProvider = "smtp"
)

type WebhookMode string

const (
	WebhookInline WebhookMode = "inline"
	WebhookKafka  WebhookMode = "kafka"
)

type (
	Tasks struct {
		PaymentResyncInterval   time.Duration
		PaymentResyncStaleAfter time.Duration
		PaymentResyncBatchSize  int
		// PaymentResyncSearchWindow is how long an order without a known payment is
		// still searched for at the gateway. Zero disables the search.
		PaymentResyncSearchWindow time.Duration
	}

	HTTPServer struct {
		Port               string
		RequestTimeout     time.Duration // middleware timeout
		RateLimiterQPS     int           // token bucket refill per second
		RateLimiterBurst   int           // token bucket capacity
		PprofEnabled       bool
		PprofPort          string
		CORSAllowedOrigins []string
	}

	Store struct {
		Mode           StoreMode
		MigrateOnStart bool
		ClaimTTL       time.Duration // metadata mode only
	}

	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}

	MercadoPago struct {
		AccessToken   string
		BaseURL       string
		Timeout       time.Duration
		MaxRetries    int
		WebhookSecret string
	}

	Checkout struct {
		FrontendURL         string
		NotificationURL     string
		StatementDescriptor string
		CurrencyID          string
	}

	SMTP struct {
		Host     string
		Port     int
		User     string
		Password string
		UseTLS   bool
	}

	Mail struct {
		Provider      MailProvider
		ResendAPIKey  string
		ResendBaseURL string
		FromName      string
		FromEmail     string
		ReplyTo       string
		SMTP          SMTP
		Timeout       time.Duration
	}

	Fulfillment struct {
		FilesDir string
		// ClaimLease is how long a claimed delivery may stay unfinished before a
		// manual resend can take it over.
		ClaimLease time.Duration
	}

	Webhook struct {
		Mode WebhookMode
	}

	Kafka struct {
		PortHealthcheck string
		Brokers         string
		Topic           string
		ConsumerGroup   string
		Sarama          Sarama
		Handlers        KafkaHandlers
	}

	Sarama struct {
		Version                   string
		ConsumerOffsetsAutocommit bool
	}

	KafkaHandlers struct {
		PaymentNotification PaymentNotification
	}

	PaymentNotification struct {
		ProcessTimeout time.Duration
		RetryInterval  time.Duration
		// RetryFor bounds how long transient failures are retried before the
		// message is committed and left to the payment resync.
		RetryFor time.Duration
	}

	Config struct {
		Production  bool
		LogLevel    string
		Tasks       Tasks
		Server      HTTPServer
		Store       Store
		Database    Database
		MercadoPago MercadoPago
		Checkout    Checkout
		Mail        Mail
		Fulfillment Fulfillment
		Webhook     Webhook
		Kafka       Kafka
	}
)

// Load reads and validates the HTTP service configuration.
func Load() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := errors.Join(validateServer(&cfg.Server), validateConfig(cfg)); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

// LoadWorker reads the notification worker configuration. The HTTP server
// settings are not required; the Kafka consumer settings are.
func LoadWorker() (*Config, error) {
	cfg, err := loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("environment loading: %w", err)
	}

	if err := errors.Join(validateConfig(cfg), validateConsumer(&cfg.Kafka)); err != nil {
		return nil, fmt.Errorf("validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// BrokerList splits KAFKA_BROKERS on commas.
func (k *Kafka) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func loadFromEnv() (*Config, error) {
	var (
		errs []error
		cfg  = &Config{}
	)

	getDuration := func(key string, def time.Duration) time.Duration {
		v, err := osGetEnvDuration(key, def)
		errs = append(errs, err)
		return v
	}
	getInt := func(key string, def int) int {
		v, err := osGetInt(key, def)
		errs = append(errs, err)
		return v
	}
	getBool := func(key string, def bool) bool {
		v, err := osGetBool(key, def)
		errs = append(errs, err)
		return v
	}

	cfg.Production = getBool("PRODUCTION", false)
	cfg.LogLevel = osGetDefault("LOG_LEVEL", "info")

	cfg.Tasks = Tasks{
		PaymentResyncInterval:   getDuration("BACKGROUND_PAYMENT_RESYNC_INTERVAL", 0),
		PaymentResyncStaleAfter: getDuration("PAYMENT_RESYNC_STALE_AFTER", 15*time.Minute),
		PaymentResyncBatchSize:  getInt("PAYMENT_RESYNC_BATCH_SIZE", 50),

		PaymentResyncSearchWindow: getDuration("PAYMENT_RESYNC_SEARCH_WINDOW", 72*time.Hour),
	}

	cfg.Server = HTTPServer{
		Port:               os.Getenv("PORT"),
		RequestTimeout:     getDuration("MIDDLEWARE_REQUEST_TIMEOUT", 30*time.Second),
		RateLimiterQPS:     getInt("MIDDLEWARE_RATE_LIMIT_QPS", 0),
		RateLimiterBurst:   getInt("MIDDLEWARE_RATE_LIMIT_BURST", 0),
		PprofEnabled:       getBool("PPROF_ENABLED", false),
		PprofPort:          os.Getenv("PPROF_PORT"),
		CORSAllowedOrigins: osGetList("CORS_ALLOWED_ORIGINS"),
	}

	cfg.Store = Store{
		Mode:           StoreMode(osGetDefault("STORE_MODE", string(StoreMetadata))),
		MigrateOnStart: getBool("DB_MIGRATE_ON_START", false),
		ClaimTTL:       getDuration("FULFILLMENT_CLAIM_TTL", 24*time.Hour),
	}

	cfg.Database = Database{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     os.Getenv("POSTGRES_PORT"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DBName:   os.Getenv("POSTGRES_DB"),
		SSLMode:  osGetDefault("POSTGRES_SSLMODE", "disable"),
	}

	cfg.MercadoPago = MercadoPago{
		AccessToken:   os.Getenv("MP_ACCESS_TOKEN"),
		BaseURL:       osGetDefault("MP_BASE_URL", "https://api.mercadopago.com"),
		Timeout:       getDuration("MP_TIMEOUT", 10*time.Second),
		MaxRetries:    getInt("MP_MAX_RETRIES", 3),
		WebhookSecret: os.Getenv("MP_WEBHOOK_SECRET"),
	}

	cfg.Checkout = Checkout{
		FrontendURL:         strings.TrimRight(osGetDefault("FRONTEND_URL", "http://localhost:5173"), "/"),
		NotificationURL:     os.Getenv("NOTIFICATION_URL"),
		StatementDescriptor: osGetDefault("STATEMENT_DESCRIPTOR", "ALEXCEL"),
		CurrencyID:          osGetDefault("CURRENCY_ID", "ARS"),
	}

	cfg.Mail = Mail{
		Provider:      MailProvider(osGetDefault("MAIL_PROVIDER", string(MailResend))),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		ResendBaseURL: osGetDefault("RESEND_BASE_URL", "https://api.resend.com"),
		FromName:      osGetDefault("EMAIL_FROM_NAME", "Datos con Alex"),
		FromEmail:     osGetDefault("DEFAULT_FROM_EMAIL", "onboarding@resend.dev"),
		ReplyTo:       os.Getenv("EMAIL_REPLY_TO"),
		SMTP: SMTP{
			Host:     osGetDefault("EMAIL_HOST", "smtp.gmail.com"),
			Port:     getInt("EMAIL_PORT", 587),
			User:     os.Getenv("EMAIL_HOST_USER"),
			Password: os.Getenv("EMAIL_HOST_PASSWORD"),
			UseTLS:   getBool("EMAIL_USE_TLS", true),
		},
		Timeout: getDuration("MAIL_TIMEOUT", 15*time.Second),
	}

	cfg.Fulfillment = Fulfillment{
		FilesDir:   osGetDefault("FILES_DIR", "files"),
		ClaimLease: getDuration("FULFILLMENT_CLAIM_LEASE", 15*time.Minute),
	}

	cfg.Webhook = Webhook{
		Mode: WebhookMode(osGetDefault("WEBHOOK_MODE", string(WebhookInline))),
	}

	cfg.Kafka = Kafka{
		Brokers:         os.Getenv("KAFKA_BROKERS"),
		Topic:           os.Getenv("KAFKA_TOPIC"),
		ConsumerGroup:   os.Getenv("KAFKA_CONSUMER_GROUP"),
		PortHealthcheck: os.Getenv("KAFKA_HTTP_HEALTHCHECK_PORT"),
		Sarama: Sarama{
			Version:                   osGetDefault("KAFKA_SARAMA_VERSION", "3.6.0"),
			ConsumerOffsetsAutocommit: getBool("KAFKA_SARAMA_OFFSETS_AUTOCOMMIT", false),
		},
		Handlers: KafkaHandlers{
			PaymentNotification: PaymentNotification{
				ProcessTimeout: getDuration("KAFKA_HANDLER_PAYMENT_NOTIFICATION_PROCESS_TIMEOUT", 30*time.Second),
				RetryInterval:  getDuration("KAFKA_HANDLER_PAYMENT_NOTIFICATION_RETRY_INTERVAL", time.Second),
				RetryFor:       getDuration("KAFKA_HANDLER_PAYMENT_NOTIFICATION_RETRY_FOR", 5*time.Minute),
			},
		},
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func validateServer(srv *HTTPServer) error {
	if srv.Port == "" {
		return errors.New("server port is required (set via PORT env variable)")
	}
	if srv.RequestTimeout <= 0 {
		return errors.New("MIDDLEWARE_REQUEST_TIMEOUT must be positive")
	}
	if srv.RateLimiterQPS <= 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_QPS is required")
	}
	if srv.RateLimiterBurst <= 0 {
		return errors.New("MIDDLEWARE_RATE_LIMIT_BURST is required")
	}
	if srv.PprofPort == "" && srv.PprofEnabled {
		return errors.New("PprofPort is required (set via PPROF_PORT env variable)")
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Store.Mode {
	case StorePostgres:
		if err := validateDatabase(&cfg.Database); err != nil {
			return err
		}
	case StoreMetadata:
		if cfg.Store.ClaimTTL <= 0 {
			return errors.New("FULFILLMENT_CLAIM_TTL must be positive")
		}
		if cfg.Tasks.PaymentResyncInterval > 0 {
			return errors.New("BACKGROUND_PAYMENT_RESYNC_INTERVAL requires STORE_MODE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_MODE %q", cfg.Store.Mode)
	}

	if cfg.MercadoPago.AccessToken == "" {
		return errors.New("MP_ACCESS_TOKEN is required")
	}
	if cfg.MercadoPago.Timeout <= 0 {
		return errors.New("MP_TIMEOUT must be positive")
	}
	if cfg.MercadoPago.MaxRetries < 0 {
		return errors.New("MP_MAX_RETRIES must not be negative")
	}
	if cfg.Fulfillment.ClaimLease <= 0 {
		return errors.New("FULFILLMENT_CLAIM_LEASE must be positive")
	}
	if cfg.Tasks.PaymentResyncSearchWindow < 0 {
		return errors.New("PAYMENT_RESYNC_SEARCH_WINDOW must not be negative")
	}
	if cfg.Checkout.FrontendURL == "" {
		return errors.New("FRONTEND_URL is required")
	}

	switch cfg.Mail.Provider {
	case MailResend:
		if cfg.Mail.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY is required for MAIL_PROVIDER=resend")
		}
	case MailSMTP:
		if cfg.Mail.SMTP.User == "" || cfg.Mail.SMTP.Password == "" {
			return errors.New("EMAIL_HOST_USER and EMAIL_HOST_PASSWORD are required for MAIL_PROVIDER=smtp")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.Mail.Provider)
	}
	if cfg.Mail.Timeout <= 0 {
		return errors.New("MAIL_TIMEOUT must be positive")
	}

	switch cfg.Webhook.Mode {
	case WebhookInline:
	case WebhookKafka:
		if cfg.Kafka.Brokers == "" {
			return errors.New("KAFKA_BROKERS is required for WEBHOOK_MODE=kafka")
		}
		if cfg.Kafka.Topic == "" {
			return errors.New("KAFKA_TOPIC is required for WEBHOOK_MODE=kafka")
		}
	default:
		return fmt.Errorf("unknown WEBHOOK_MODE %q", cfg.Webhook.Mode)
	}

	return nil
}

func validateDatabase(db *Database) error {
	if db.Host == "" {
		return errors.New("POSTGRES_HOST is required")
	}
	if db.Port == "" {
		return errors.New("POSTGRES_PORT is required")
	}
	if db.User == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if db.Password == "" {
		return errors.New("POSTGRES_PASSWORD is required")
	}
	if db.DBName == "" {
		return errors.New("POSTGRES_DB is required")
	}
	return nil
}

func validateConsumer(k *Kafka) error {
	if k.Brokers == "" {
		return errors.New("KAFKA_BROKERS is required")
	}
	if k.Topic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	if k.ConsumerGroup == "" {
		return errors.New("KAFKA_CONSUMER_GROUP is required")
	}
	if k.PortHealthcheck == "" {
		return errors.New("KAFKA_HTTP_HEALTHCHECK_PORT is required")
	}
	if k.Handlers.PaymentNotification.ProcessTimeout <= 0 {
		return errors.New("KAFKA_HANDLER_PAYMENT_NOTIFICATION_PROCESS_TIMEOUT must be positive")
	}
	if k.Handlers.PaymentNotification.RetryInterval <= 0 {
		return errors.New("KAFKA_HANDLER_PAYMENT_NOTIFICATION_RETRY_INTERVAL must be positive")
	}
	if k.Handlers.PaymentNotification.RetryFor < 0 {
		return errors.New("KAFKA_HANDLER_PAYMENT_NOTIFICATION_RETRY_FOR must not be negative")
	}
	return nil
}

func osGetDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func osGetList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var res []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}

func osGetInt(s string, def int) (int, error) {
	val := os.Getenv(s)
	if val == "" {
		return def, nil
	}

	res, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid int format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetEnvDuration(s string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(s)
	if val == "" {
		return def, nil
	}

	res, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s=%q: %w", s, val, err)
	}
	return res, nil
}

func osGetBool(s string, def bool) (bool, error) {
	val := os.Getenv(s)
	if val == "" {
		return def, nil
	}

	res, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool format for %s=%q: %w", s, val, err)
	}
	return res, nil
}
