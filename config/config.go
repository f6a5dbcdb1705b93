package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/pagewatch/pkg/errors"
)

// Strategy names the change-detection variant
type Strategy string

const (
	StrategyLinks  Strategy = "links"
	StrategyHash   Strategy = "hash"
	StrategyLatest Strategy = "latest"
)

// LinkPolicy decides what a links run persists
type LinkPolicy string

const (
	// PolicyAccumulate persists previously seen links plus the new ones
	PolicyAccumulate LinkPolicy = "accumulate"
	// PolicyReplace persists exactly the links found in the latest run
	PolicyReplace LinkPolicy = "replace"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config represents the application configuration
type Config struct {
	// Target and messaging (required)
	FetchURL     string
	NotifyToken  string
	NotifyChatID string

	// Change detection
	Strategy         Strategy
	LinkPolicy       LinkPolicy
	NotifyOnFirstRun bool
	LinkDenylist     []string
	SummaryThreshold int

	// State
	StateBackend string
	StateFile    string

	// Timeouts and delivery
	FetchTimeout     time.Duration
	NotifyTimeout    time.Duration
	NotifyRetries    int
	NotifyRatePerSec int
	TelegramAPIURL   string

	// Memcache configuration
	MemcacheAddr string
	DedupTTL     time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int
	RedisStateKey        string

	// Watch mode
	WatchSchedule string

	// Environment
	Environment string

	// values that could not be parsed, reported by Validate
	parseProblems []string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	strategy := Strategy(strings.ToLower(getEnv("MONITOR_STRATEGY", string(StrategyLinks))))

	var p envParser
	fetchTimeout := p.intVal("FETCH_TIMEOUT_SECONDS", 15)
	notifyTimeout := p.intVal("NOTIFY_TIMEOUT_SECONDS", 10)
	notifyRetries := p.intVal("NOTIFY_RETRIES", 1)
	notifyRate := p.intVal("NOTIFY_RATE_PER_SEC", 1)
	summaryThreshold := p.intVal("SUMMARY_THRESHOLD", 10)
	dedupTTL := p.intVal("DEDUP_TTL_HOURS", 24)
	redisDB := p.intVal("REDIS_DB", 0)
	streamMaxLength := p.intVal("REDIS_STREAM_MAX_LENGTH", 1000)
	notifyOnFirstRun := p.boolVal("NOTIFY_ON_FIRST_RUN", false)

	return &Config{
		FetchURL:     strings.TrimSpace(os.Getenv("TARGET_URL")),
		NotifyToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		NotifyChatID: strings.TrimSpace(os.Getenv("CHAT_ID")),

		Strategy:         strategy,
		LinkPolicy:       LinkPolicy(strings.ToLower(getEnv("LINK_POLICY", string(PolicyAccumulate)))),
		NotifyOnFirstRun: notifyOnFirstRun,
		LinkDenylist:     splitList(os.Getenv("LINK_DENYLIST")),
		SummaryThreshold: summaryThreshold,

		StateBackend: strings.ToLower(getEnv("STATE_BACKEND", BackendFile)),
		StateFile:    getEnv("STATE_FILE", DefaultStateFile(strategy)),

		FetchTimeout:     time.Duration(fetchTimeout) * time.Second,
		NotifyTimeout:    time.Duration(notifyTimeout) * time.Second,
		NotifyRetries:    notifyRetries,
		NotifyRatePerSec: notifyRate,
		TelegramAPIURL:   strings.TrimRight(getEnv("TELEGRAM_API_URL", "https://api.telegram.org"), "/"),

		MemcacheAddr: os.Getenv("MEMCACHE_ADDR"),
		DedupTTL:     time.Duration(dedupTTL) * time.Hour,

		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          os.Getenv("REDIS_STREAM"),
		RedisStreamMaxLength: streamMaxLength,
		RedisStateKey:        getEnv("REDIS_STATE_KEY", "pagewatch:state:"+string(strategy)),

		WatchSchedule: getEnv("WATCH_SCHEDULE", "@every 30m"),

		Environment: getEnv("MONITOR_ENVIRONMENT", "development"),

		parseProblems: p.problems,
	}
}

// DefaultStateFile returns the state file name used by each strategy
func DefaultStateFile(strategy Strategy) string {
	switch strategy {
	case StrategyHash:
		return "last_hash.txt"
	case StrategyLatest:
		return "last_article.txt"
	default:
		return "seen_links.txt"
	}
}

// Validate reports every missing or invalid setting as one configuration error
func (c *Config) Validate() error {
	problems := append([]string(nil), c.parseProblems...)

	if c.NotifyToken == "" {
		problems = append(problems, "TELEGRAM_TOKEN is required")
	}
	if c.NotifyChatID == "" {
		problems = append(problems, "CHAT_ID is required")
	}
	if c.FetchURL == "" {
		problems = append(problems, "TARGET_URL is required")
	} else if u, err := url.Parse(c.FetchURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("TARGET_URL %q is not an absolute http(s) URL", c.FetchURL))
	}

	switch c.Strategy {
	case StrategyLinks, StrategyHash, StrategyLatest:
	default:
		problems = append(problems, fmt.Sprintf("unknown MONITOR_STRATEGY %q", c.Strategy))
	}

	switch c.LinkPolicy {
	case PolicyAccumulate, PolicyReplace:
	default:
		problems = append(problems, fmt.Sprintf("unknown LINK_POLICY %q", c.LinkPolicy))
	}

	switch c.StateBackend {
	case BackendFile:
		if strings.TrimSpace(c.StateFile) == "" {
			problems = append(problems, "STATE_FILE must not be empty")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required when STATE_BACKEND=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STATE_BACKEND %q", c.StateBackend))
	}

	if c.FetchTimeout <= 0 {
		problems = append(problems, "FETCH_TIMEOUT_SECONDS must be positive")
	}
	if c.NotifyTimeout <= 0 {
		problems = append(problems, "NOTIFY_TIMEOUT_SECONDS must be positive")
	}
	if c.NotifyRetries < 0 || c.NotifyRetries > 1 {
		problems = append(problems, "NOTIFY_RETRIES must be 0 or 1")
	}
	if c.NotifyRatePerSec <= 0 {
		problems = append(problems, "NOTIFY_RATE_PER_SEC must be positive")
	}
	if c.SummaryThreshold <= 0 {
		problems = append(problems, "SUMMARY_THRESHOLD must be positive")
	}
	if c.DedupTTL <= 0 {
		problems = append(problems, "DEDUP_TTL_HOURS must be positive")
	}
	if c.RedisStreamMaxLength < 0 {
		problems = append(problems, "REDIS_STREAM_MAX_LENGTH must not be negative")
	}
	if c.RedisDB < 0 {
		problems = append(problems, "REDIS_DB must not be negative")
	}

	if len(problems) > 0 {
		return apperrors.NewConfiguration(strings.Join(problems, "; "), nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envParser reads typed values and remembers the ones that fail to parse
type envParser struct {
	problems []string
}

func (p *envParser) intVal(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s %q is not an integer", key, raw))
		return defaultValue
	}
	return v
}

func (p *envParser) boolVal(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s %q is not a boolean (use true or false)", key, raw))
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
