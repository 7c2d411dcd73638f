// Package config loads the scheduler's tunables from a config file,
// environment variables, or compiled-in defaults, in that order of
// override.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of tunables for one scheduler run.
type Config struct {
	Pool       PoolConfig
	Supervisor SupervisorConfig
	Server     ServerConfig
	Events     EventsConfig
	Metrics    MetricsConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	LogLevel   string
	LogPretty  bool
}

// PoolConfig configures the shared task pool: its capacity and the
// active selection policy's tunables.
type PoolConfig struct {
	Capacity           int
	MaxRetries         int
	Algorithm          string
	MLFQTimeSliceMs    uint
	RRTimeQuantumMs    uint
	NumCPUCores        int
	MLFQPromoteAfterMs uint
}

// SupervisorConfig configures worker count and housekeeping cadence.
type SupervisorConfig struct {
	NumWorkers               int
	WorkerCheckInterval      time.Duration
	CleanupInterval          time.Duration
	CompletedTaskMaxAge      time.Duration
	TaskTimeoutCheckInterval time.Duration
	ShutdownTimeout          time.Duration
	LivenessGracePeriod      time.Duration
}

// ServerConfig configures the optional control-plane HTTP surface
// (internal/api): submit/cancel/snapshot/set-algorithm plus the live
// WebSocket snapshot stream.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// EventsConfig configures the optional Redis pub/sub fan-out of
// lifecycle events to external subscribers (the out-of-scope
// dashboard's feed).
type EventsConfig struct {
	Enabled            bool
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// AuthConfig configures bearer-token and API-key auth on the control API.
type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	APIKeys   []string
}

// RateLimitConfig configures the control API's per-client throttle,
// backed by golang.org/x/time/rate.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

// Load reads config.yaml from the working directory, ./config, or
// /etc/go-task-scheduler, overlays TASKSCHED_-prefixed environment
// variables, and falls back to setDefaults for anything unset. A
// missing config file is not an error; every other read failure is.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/go-task-scheduler")

	setDefaults()

	viper.SetEnvPrefix("TASKSCHED")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	// Pool defaults
	viper.SetDefault("pool.capacity", 100)
	viper.SetDefault("pool.maxretries", 3)
	viper.SetDefault("pool.algorithm", "PRIORITY")
	viper.SetDefault("pool.mlfqtimeslicems", 100)
	viper.SetDefault("pool.rrtimequantumms", 100)
	viper.SetDefault("pool.numcpucores", 0) // 0 => runtime.NumCPU()
	viper.SetDefault("pool.mlfqpromoteafterms", 5000)

	// Supervisor defaults
	viper.SetDefault("supervisor.numworkers", 3)
	viper.SetDefault("supervisor.workercheckinterval", 5*time.Second)
	viper.SetDefault("supervisor.cleanupinterval", 60*time.Second)
	viper.SetDefault("supervisor.completedtaskmaxage", 300*time.Second)
	viper.SetDefault("supervisor.tasktimeoutcheckinterval", 2*time.Second)
	viper.SetDefault("supervisor.shutdowntimeout", 10*time.Second)
	viper.SetDefault("supervisor.livenessgraceperiod", 10*time.Second)

	// Control-plane server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readtimeout", 30*time.Second)
	viper.SetDefault("server.writetimeout", 30*time.Second)
	viper.SetDefault("server.idletimeout", 120*time.Second)

	// Event fan-out defaults
	viper.SetDefault("events.enabled", false)
	viper.SetDefault("events.redisaddr", "localhost:6379")
	viper.SetDefault("events.redispassword", "")
	viper.SetDefault("events.redisdb", 0)
	viper.SetDefault("events.breakermaxfailures", uint32(5))
	viper.SetDefault("events.breakeropentimeout", 30*time.Second)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// Auth defaults
	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwtsecret", "")
	viper.SetDefault("auth.apikeys", []string{})

	// Rate limit defaults
	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.requestspersecond", 50.0)
	viper.SetDefault("ratelimit.burst", 100)

	// Logging defaults
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("logpretty", false)
}
