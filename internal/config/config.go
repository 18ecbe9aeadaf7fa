package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shaiso/Autofarm/internal/auth"
	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/gameapi"
	"github.com/shaiso/Autofarm/internal/jitter"
	"github.com/shaiso/Autofarm/internal/proxy"
	"github.com/shaiso/Autofarm/internal/scheduler"
)

// Ошибки конфигурации.
var (
	// ErrInvalidConfig — значение переменной не разобрано.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrMissingCredentials — не заданы API_ID / API_HASH.
	ErrMissingCredentials = errors.New("API_ID and API_HASH are required")
)

// DefaultEnvFile — файл окружения по умолчанию.
const DefaultEnvFile = ".env"

// DefaultDisabledTasks — типы заданий, отключённые по умолчанию.
var DefaultDisabledTasks = []string{
	"INVITE_FRIENDS",
	"TON_TRANSACTION",
	"BOOST_CHANNEL",
	"ACTIVITY_CHALLENGE",
	"CONNECT_WALLET",
}

// Config — настройки фермы.
type Config struct {
	// Учётные данные приложения платформы.
	APIID   int
	APIHash string

	SleepTime  jitter.Range
	StartDelay jitter.Range

	AutoTask          bool
	JoinChannels      bool
	ClaimReward       bool
	UseProxyFromFile  bool
	RefID             string
	RefFallbackID     string
	RefFallbackWeight int
	DisabledTasks     []string

	ProxyFile      string
	SessionsDir    string
	UserAgentsFile string

	APIBaseURL     string
	AuthGatewayURL string
	BotPeer        string
	RequestTimeout time.Duration
	IPCheckURL     string

	// Необязательная инфраструктура.
	DBURL       string
	RabbitMQURL string
	MetricsPort int
	ReportCron  string
}

// Load читает envFile (если есть) и переменные окружения.
//
// Пустой envFile означает .env в текущей директории; его отсутствие
// не ошибка. Явно указанный файл обязан существовать. Переменные
// окружения процесса имеют приоритет над файлом.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	return FromLookup(os.LookupEnv)
}

// FromLookup собирает Config из источника переменных.
// Пустое значение переменной равносильно её отсутствию.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		APIID:             p.integer("API_ID", 0),
		APIHash:           p.str("API_HASH", ""),
		SleepTime:         p.rng("SLEEP_TIME", jitter.Seconds(7200, 10800)),
		StartDelay:        p.rng("START_DELAY", jitter.Seconds(5, 25)),
		AutoTask:          p.boolean("AUTO_TASK", true),
		JoinChannels:      p.boolean("JOIN_TG_CHANNELS", true),
		ClaimReward:       p.boolean("CLAIM_REWARD", true),
		UseProxyFromFile:  p.boolean("USE_PROXY_FROM_FILE", false),
		RefID:             p.str("REF_ID", ""),
		RefFallbackID:     p.str("REF_FALLBACK_ID", ""),
		RefFallbackWeight: p.integer("REF_FALLBACK_WEIGHT", 0),
		DisabledTasks:     p.list("DISABLED_TASKS", DefaultDisabledTasks),
		ProxyFile:         p.str("PROXY_FILE", "proxies.txt"),
		SessionsDir:       p.str("SESSIONS_DIR", "sessions"),
		UserAgentsFile:    p.str("USER_AGENTS_FILE", "user_agents.json"),
		APIBaseURL:        p.str("API_BASE_URL", gameapi.DefaultBaseURL),
		AuthGatewayURL:    p.str("AUTH_GATEWAY_URL", auth.DefaultGatewayURL),
		BotPeer:           p.str("BOT_PEER", auth.DefaultBotPeer),
		RequestTimeout:    time.Duration(p.integer("REQUEST_TIMEOUT", 30)) * time.Second,
		IPCheckURL:        p.str("IP_CHECK_URL", proxy.DefaultIPCheckURL),
		DBURL:             p.str("DB_URL", ""),
		RabbitMQURL:       p.str("RABBITMQ_URL", ""),
		MetricsPort:       p.integer("METRICS_PORT", 8090),
		ReportCron:        p.optional("REPORT_CRON", "*/30 * * * *"),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя проверить при разборе.
func (c *Config) Validate() error {
	if c.APIID <= 0 || c.APIHash == "" {
		return ErrMissingCredentials
	}
	if c.RefFallbackWeight < 0 || c.RefFallbackWeight > 100 {
		return fmt.Errorf("%w: REF_FALLBACK_WEIGHT must be within 0..100, got %d", ErrInvalidConfig, c.RefFallbackWeight)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("%w: METRICS_PORT out of range: %d", ErrInvalidConfig, c.MetricsPort)
	}
	if c.ReportCron != "" {
		if err := scheduler.ValidateCronExpr(c.ReportCron); err != nil {
			return fmt.Errorf("%w: REPORT_CRON: %v", ErrInvalidConfig, err)
		}
	}
	return c.JitterPolicy().Validate()
}

// JitterPolicy строит политику задержек: SLEEP_TIME и START_DELAY из
// конфигурации, остальные границы по умолчанию.
func (c *Config) JitterPolicy() jitter.Policy {
	p := jitter.DefaultPolicy()
	p.CycleSleep = c.SleepTime
	p.StartDelay = c.StartDelay
	return p
}

// Referral возвращает выбор start parameter для handshake.
func (c *Config) Referral() auth.Referral {
	return auth.Referral{
		Primary:        c.RefID,
		Fallback:       c.RefFallbackID,
		FallbackWeight: c.RefFallbackWeight,
	}
}

// TaskFilter возвращает фильтр заданий.
func (c *Config) TaskFilter() domain.TaskFilter {
	return domain.NewTaskFilter(c.DisabledTasks, c.JoinChannels)
}

// --- Parsing ---

// parser накапливает ошибки разбора, чтобы сообщить обо всех ключах сразу.
type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, value, err))
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

// optional как string, но явно заданное пустое значение отключает параметр.
func (p *parser) optional(key, def string) string {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, errors.New("not an integer"))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) rng(key string, def jitter.Range) jitter.Range {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	r, err := ParseRange(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return r
}

func (p *parser) list(key string, def []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	return ParseList(v)
}

// ParseBool принимает true/false, 1/0, yes/no, on/off (без учёта регистра).
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

// ParseRange разбирает диапазон секунд: "[7200, 10800]" или "7200,10800".
func ParseRange(v string) (jitter.Range, error) {
	var bounds []int

	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		if err := json.Unmarshal([]byte(v), &bounds); err != nil {
			return jitter.Range{}, fmt.Errorf("expected [min, max]: %v", err)
		}
	} else {
		for _, part := range strings.Split(v, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return jitter.Range{}, fmt.Errorf("expected min,max: %v", err)
			}
			bounds = append(bounds, n)
		}
	}

	if len(bounds) != 2 {
		return jitter.Range{}, fmt.Errorf("expected exactly two bounds, got %d", len(bounds))
	}

	r := jitter.Seconds(bounds[0], bounds[1])
	if err := r.Validate(); err != nil {
		return jitter.Range{}, err
	}
	return r, nil
}

// ParseList разбирает список строк: JSON-массив или значения через запятую.
// Кавычки вокруг элементов в форме через запятую снимаются.
func ParseList(v string) []string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "[") {
		var items []string
		if err := json.Unmarshal([]byte(v), &items); err == nil {
			return compact(items)
		}
		// ['A','B'] — одинарные кавычки.
		v = strings.TrimSuffix(strings.TrimPrefix(v, "["), "]")
	}

	parts := strings.Split(v, ",")
	for i, part := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(part), `'"`)
	}
	return compact(parts)
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
