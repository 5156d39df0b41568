package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/adapters/out/pgnotify"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/jobs"
)

const (
	DefaultHTTPPort           = "8080"
	DefaultCapacityPerCourier = 3
	DefaultWaitLimitSeconds   = 3600
	DefaultAdvisoryLockKey    = 7_351_001
)

var (
	ErrPizzeriaAddressRequired = errors.New("PIZZERIA_ADDRESS is required")
	ErrDatabaseRequired        = errors.New("DB_HOST and DB_NAME are required")
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	ORSBaseURL string
	// ORSAPIKey is used by the feed listener and sweep; HTTP requests bring their own.
	ORSAPIKey string

	PizzeriaAddress    string
	CapacityPerCourier int
	ServiceCity        string
	ServiceState       string
	WaitLimitSeconds   int

	DispatchWorkers      int
	DispatchQueueSize    int
	DispatchCycleTimeout time.Duration
	DispatchSweepCron    string
	DispatchClearScope   commands.ClearScope
	DispatchCandidateCap int
	DispatchAdvisoryLock bool

	// FeedChannel empty disables the change feed listener.
	FeedChannel        string
	FeedReconnectDelay time.Duration
	FeedInstallTrigger bool

	LogLevel slog.Level
}

// DSN is the libpq connection string shared by GORM and the LISTEN connection.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the configuration through lookup, usually os.LookupEnv.
// Unset optional keys take their defaults; a key set to an empty value is kept
// empty, which is how DISPATCH_SWEEP_CRON and FEED_CHANNEL are disabled.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	r := envReader{lookup: lookup}

	config := Config{
		HTTPPort:   r.getString("HTTP_PORT", DefaultHTTPPort),
		DBHost:     r.getString("DB_HOST", ""),
		DBPort:     r.getString("DB_PORT", "5432"),
		DBUser:     r.getString("DB_USER", ""),
		DBPassword: r.getString("DB_PASSWORD", ""),
		DBName:     r.getString("DB_NAME", ""),
		DBSslMode:  r.getString("DB_SSLMODE", "disable"),

		ORSBaseURL: r.getString("ORS_BASE_URL", ""),
		ORSAPIKey:  r.getString("ORS_API_KEY", ""),

		PizzeriaAddress:    r.getString("PIZZERIA_ADDRESS", ""),
		CapacityPerCourier: r.getInt("CAPACITY_PER_COURIER", DefaultCapacityPerCourier),
		ServiceCity:        r.getString("SERVICE_CITY", ""),
		ServiceState:       r.getString("SERVICE_STATE", ""),
		WaitLimitSeconds:   r.getInt("WAIT_LIMIT_SECONDS", DefaultWaitLimitSeconds),

		DispatchWorkers:      r.getInt("DISPATCH_WORKERS", jobs.DefaultWorkers),
		DispatchQueueSize:    r.getInt("DISPATCH_QUEUE_SIZE", jobs.DefaultQueueSize),
		DispatchCycleTimeout: r.getDuration("DISPATCH_CYCLE_TIMEOUT", commands.DefaultCycleTimeout),
		DispatchSweepCron:    r.getString("DISPATCH_SWEEP_CRON", jobs.DefaultSweepSchedule),
		DispatchCandidateCap: r.getInt("DISPATCH_CANDIDATE_CAP", 0),
		DispatchAdvisoryLock: r.getBool("DISPATCH_ADVISORY_LOCK", false),

		FeedChannel:        r.getString("FEED_CHANNEL", pgnotify.DefaultChannel),
		FeedReconnectDelay: r.getDuration("FEED_RECONNECT_DELAY", jobs.DefaultReconnectDelay),
		FeedInstallTrigger: r.getBool("FEED_INSTALL_TRIGGER", true),
	}

	scope, err := commands.ParseClearScope(r.getString("DISPATCH_CLEAR_SCOPE", "idle"))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("DISPATCH_CLEAR_SCOPE: %w", err))
	}
	config.DispatchClearScope = scope

	if err = config.LogLevel.UnmarshalText([]byte(r.getString("LOG_LEVEL", "info"))); err != nil {
		r.errs = append(r.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if config.PizzeriaAddress == "" {
		r.errs = append(r.errs, ErrPizzeriaAddressRequired)
	}
	if config.DBHost == "" || config.DBName == "" {
		r.errs = append(r.errs, ErrDatabaseRequired)
	}
	if config.CapacityPerCourier <= 0 {
		r.errs = append(r.errs, errors.New("CAPACITY_PER_COURIER must be greater than 0"))
	}
	if config.DispatchCandidateCap < 0 {
		r.errs = append(r.errs, errors.New("DISPATCH_CANDIDATE_CAP must not be negative"))
	}

	if err = errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return config, nil
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) getString(key, fallback string) string {
	v, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(v)
}

func (r *envReader) getInt(key string, fallback int) int {
	v := r.getString(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) getBool(key string, fallback bool) bool {
	v := r.getString(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (r *envReader) getDuration(key string, fallback time.Duration) time.Duration {
	v := r.getString(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
