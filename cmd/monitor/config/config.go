package config

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/MichalMitros/restock-monitor/internal/monitor"
	"github.com/caarlos0/env/v6"
	"github.com/jessevdk/go-flags"
)

// Run modes.
const (
	ModeOnce        = "once"
	ModeTest        = "test"
	ModeContinuous  = "continuous"
	ModeSchedule    = "schedule"
	ModeListen      = "listen"
	ModeCommand     = "command"
	ModeSubscribe   = "subscribe"
	ModeUnsubscribe = "unsubscribe"
)

// Notification transports.
const (
	TransportHTTP     = "http"
	TransportRabbitMQ = "rabbitmq"
	TransportLog      = "log"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL string        `env:"DATABASE_URL"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"restock-monitor.db"`
	CatalogPath string        `env:"CATALOG_PATH" envDefault:"configs/catalog.yaml"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	UserAgent   string        `env:"USER_AGENT" envDefault:"restock-monitor/0.1.0"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	Schedule    string        `env:"SCHEDULE" envDefault:"*/10 * * * *"`

	Monitor  monitor.Config       `envPrefix:"MONITOR_"`
	Pacing   monitor.PacingConfig `envPrefix:"PACING_"`
	Notifier Notifier             `envPrefix:"NOTIFIER_"`
	RabbitMQ RabbitMQ
}

// Notifier holds restock notifications delivery configuration.
type Notifier struct {
	Transport  string        `env:"TRANSPORT" envDefault:"http"`
	URL        string        `env:"URL"`
	Credential string        `env:"CREDENTIAL"`
	Window     time.Duration `env:"WINDOW" envDefault:"1h"`
	ClaimTTL   time.Duration `env:"CLAIM_TTL" envDefault:"2m"`
	BrandPause time.Duration `env:"BRAND_PAUSE" envDefault:"1s"`
	RoutingKey string        `env:"ROUTING_KEY" envDefault:"restock-monitor.notifications"`
}

// RabbitMQ holds RabbitMQ configuration.
type RabbitMQ struct {
	URL               string `env:"RABBITMQ_URL"`
	Exchange          string `env:"RABBITMQ_EXCHANGE" envDefault:"restock-ex"`
	Queue             string `env:"RABBITMQ_QUEUE" envDefault:"restock-monitor.commands"`
	CommandRoutingKey string `env:"RABBITMQ_COMMAND_ROUTING_KEY" envDefault:"restock-monitor.check"`
}

// Options are command line options.
type Options struct {
	Mode string `short:"m" long:"mode" default:"once" description:"Run mode" choice:"once" choice:"test" choice:"continuous" choice:"schedule" choice:"listen" choice:"command" choice:"subscribe" choice:"unsubscribe"`
	// Sequential overrides MONITOR_SEQUENTIAL when set.
	Sequential bool     `long:"sequential" description:"Check brands one by one in random order"`
	Brands     []string `short:"b" long:"brand" description:"Brand to check or (un)subscribe to, may be repeated, all brands when omitted"`
	Schedule   string   `long:"schedule" description:"Cron schedule of schedule mode, overrides SCHEDULE"`
	Email      string   `long:"email" description:"Subscriber email of subscribe and unsubscribe modes"`
}

// IsSubscription reports if mode manages subscriptions instead of monitoring.
func IsSubscription(mode string) bool {
	return mode == ModeSubscribe || mode == ModeUnsubscribe
}

// Subscriber returns lower-cased address of Email option, it's required in subscription modes.
func (o Options) Subscriber() (string, error) {
	if strings.TrimSpace(o.Email) == "" {
		return "", fmt.Errorf("--email is required in %s mode", o.Mode)
	}

	address, err := mail.ParseAddress(o.Email)
	if err != nil {
		return "", fmt.Errorf("invalid --email %q: %w", o.Email, err)
	}

	return strings.ToLower(address.Address), nil
}

// Validate reports command line options problems.
func (o Options) Validate() error {
	if !IsSubscription(o.Mode) {
		return nil
	}

	var errs []error
	if _, err := o.Subscriber(); err != nil {
		errs = append(errs, err)
	}
	if len(o.Brands) == 0 {
		errs = append(errs, fmt.Errorf("at least one --brand is required in %s mode", o.Mode))
	}

	return errors.Join(errs...)
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("can't parse env variables: %w", err)
	}

	return cfg, nil
}

// ParseOptions parses command line arguments.
// Returned error is flags.ErrHelp typed *flags.Error when help was requested.
func ParseOptions(args []string) (Options, error) {
	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).ParseArgs(args); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// IsHelp reports if err was returned because help was requested.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

// Apply overrides configuration with command line options.
func (c *Config) Apply(opts Options) {
	if opts.Sequential {
		c.Monitor.Sequential = true
	}
	if opts.Schedule != "" {
		c.Schedule = opts.Schedule
	}
	if opts.Mode == ModeTest {
		c.Notifier.Transport = TransportLog
	}
}

// Validate reports configuration problems of provided run mode.
// Notifier settings are checked only in modes which deliver notifications.
func (c *Config) Validate(mode string) error {
	var errs []error

	if mode != ModeCommand && !IsSubscription(mode) {
		errs = append(errs, c.Notifier.validate(c.RabbitMQ.URL)...)
	}

	if (mode == ModeListen || mode == ModeCommand) && c.RabbitMQ.URL == "" {
		errs = append(errs, fmt.Errorf("RABBITMQ_URL is required in %s mode", mode))
	}

	if c.Monitor.BrandTimeout <= 0 && !IsSubscription(mode) {
		errs = append(errs, errors.New("MONITOR_BRAND_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func (n Notifier) validate(rabbitMQURL string) []error {
	var errs []error

	switch n.Transport {
	case TransportHTTP:
		if n.URL == "" {
			errs = append(errs, errors.New("NOTIFIER_URL is required by http transport"))
		}
	case TransportRabbitMQ:
		if rabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required by rabbitmq transport"))
		}
	case TransportLog:
	default:
		errs = append(errs, fmt.Errorf("unsupported notifier transport %q", n.Transport))
	}

	if n.Transport != TransportLog && n.Credential == "" {
		errs = append(errs, errors.New("NOTIFIER_CREDENTIAL is required"))
	}

	// claim is renewed before each brand, so it must outlast a single delivery.
	if n.ClaimTTL <= 0 {
		errs = append(errs, errors.New("NOTIFIER_CLAIM_TTL must be positive"))
	}

	return errs
}
