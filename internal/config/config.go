package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CredentialsFile string // path to the credentials.yaml file
	ScheduleTime    string // local "HH:MM" for the daily batch run
	ScheduleEnabled bool   // false => no daily batch, API/CLI only

	// Record storage
	StoreBackend string // "memory" | "file" | "redis" | "sqlite"
	DataFile     string // path for the file backend
	SQLitePath   string // path for the sqlite backend

	// Outbound HTTP
	HTTPTimeout    time.Duration // per-attempt timeout (ex: 30s)
	HTTPRetries    int           // total attempts per request
	HTTPRetryDelay time.Duration // base wait between attempts, grows linearly

	// Batch pacing
	DelayBase   time.Duration // fixed wait between two sites in a batch
	DelayJitter time.Duration // random extra wait, uniform in [0, DelayJitter)

	// Redis (only read when StoreBackend == "redis")
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("CHECKIN_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("CHECKIN_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("CHECKIN_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CHECKIN_PRETTY_LOG", true),

		// Sites and schedule
		CredentialsFile: getenv("CHECKIN_CREDENTIALS_FILE", "/app/credentials.yaml"),
		ScheduleTime:    getenv("CHECKIN_SCHEDULE_TIME", "08:00"),
		ScheduleEnabled: mustBool("CHECKIN_SCHEDULE_ENABLED", true),

		// Record storage
		StoreBackend: getenv("CHECKIN_STORE_BACKEND", "file"),
		DataFile:     getenv("CHECKIN_DATA_FILE", "/app/data/records.json"),
		SQLitePath:   getenv("CHECKIN_SQLITE_PATH", "/app/data/checkin.db"),

		// Outbound HTTP
		HTTPTimeout:    mustDuration("CHECKIN_HTTP_TIMEOUT", 30*time.Second),
		HTTPRetries:    getenvInt("CHECKIN_HTTP_RETRIES", 3),
		HTTPRetryDelay: mustDuration("CHECKIN_HTTP_RETRY_DELAY", 1*time.Second),

		// Batch pacing
		DelayBase:   mustDuration("CHECKIN_DELAY_BASE", 1*time.Second),
		DelayJitter: mustDuration("CHECKIN_DELAY_JITTER", 2*time.Second),

		// Redis settings
		RedisAddr:           getenv("CHECKIN_REDIS_ADDR", "localhost:6379"),
		RedisUser:           getenv("CHECKIN_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("CHECKIN_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("CHECKIN_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	if !validBackend(cfg.StoreBackend) {
		panic("❌ FATAL: CHECKIN_STORE_BACKEND must be one of memory|file|redis|sqlite, got " + cfg.StoreBackend)
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func validBackend(name string) bool {
	switch name {
	case "memory", "file", "redis", "sqlite":
		return true
	}
	return false
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
