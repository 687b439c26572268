package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Query     QueryConfig     `mapstructure:"query"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// IngestConfig drives the scheduler: cron cadence, warm-up before the first
// pass, and the mandatory pause between adapters within a pass.
type IngestConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Schedule       string        `mapstructure:"schedule"`
	WarmupDelay    time.Duration `mapstructure:"warmup_delay"`
	AdapterDelay   time.Duration `mapstructure:"adapter_delay"`
	SnapshotRaw    bool          `mapstructure:"snapshot_raw"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type SourcesConfig struct {
	Trending    TrendingSourceConfig `mapstructure:"trending"`
	NewListings ListingsSourceConfig `mapstructure:"new_listings"`
	Pages       []PageSourceConfig   `mapstructure:"pages"`
}

type TrendingSourceConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	MaxItems  int    `mapstructure:"max_items"`
}

type ListingsSourceConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	MaxItems  int    `mapstructure:"max_items"`
}

// PageSourceConfig configures one scraped HTML source. Selectors are
// structural heuristics (headings, card containers), not stable contracts.
type PageSourceConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Category    string `mapstructure:"category"`
	Selectors   string `mapstructure:"selectors"`
	MaxItems    int    `mapstructure:"max_items"`
	MinNameLen  int    `mapstructure:"min_name_len"`
	MaxNameLen  int    `mapstructure:"max_name_len"`
	UseFallback bool   `mapstructure:"use_fallback"`
}

type BroadcastConfig struct {
	LiveInterval time.Duration `mapstructure:"live_interval"`
	SendBuffer   int           `mapstructure:"send_buffer"`
}

type SentimentConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	BearerTokenEnv  string        `mapstructure:"bearer_token_env"`
	MentionInterval time.Duration `mapstructure:"mention_interval"`
	TrendInterval   time.Duration `mapstructure:"trend_interval"`
	MentionWarmup   time.Duration `mapstructure:"mention_warmup"`
	TrendWarmup     time.Duration `mapstructure:"trend_warmup"`
	RequestDelay    time.Duration `mapstructure:"request_delay"`
	MaxResults      int           `mapstructure:"max_results"`
	TrackedTerms    []string      `mapstructure:"tracked_terms"`
	PriorityTerms   []string      `mapstructure:"priority_terms"`
	TrendTerms      []string      `mapstructure:"trend_terms"`
	PositiveWords   []string      `mapstructure:"positive_words"`
	NegativeWords   []string      `mapstructure:"negative_words"`
}

// QueryConfig holds presentation-level read filters.
type QueryConfig struct {
	Denylist []string `mapstructure:"denylist"`
}

func Load(path string, envOnly bool) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "30s")

	v.SetDefault("ingest.enabled", true)
	v.SetDefault("ingest.schedule", "@every 15m")
	v.SetDefault("ingest.warmup_delay", "5s")
	v.SetDefault("ingest.adapter_delay", "2s")
	v.SetDefault("ingest.snapshot_raw", true)
	v.SetDefault("ingest.request_timeout", "30s")

	v.SetDefault("sources.trending.enabled", true)
	v.SetDefault("sources.trending.endpoint", "https://api.coingecko.com/api/v3/search/trending")
	v.SetDefault("sources.trending.api_key_env", "COINGECKO_API_KEY")
	v.SetDefault("sources.trending.max_items", 8)

	v.SetDefault("sources.new_listings.enabled", true)
	v.SetDefault("sources.new_listings.endpoint", "https://pro-api.coinmarketcap.com/v1/cryptocurrency/listings/new")
	v.SetDefault("sources.new_listings.api_key_env", "COINMARKETCAP_API_KEY")
	v.SetDefault("sources.new_listings.max_items", 10)

	v.SetDefault("broadcast.live_interval", "30s")
	v.SetDefault("broadcast.send_buffer", 64)

	v.SetDefault("sentiment.enabled", true)
	v.SetDefault("sentiment.endpoint", "https://api.twitter.com/2/tweets/search/recent")
	v.SetDefault("sentiment.bearer_token_env", "TWITTER_BEARER_TOKEN")
	v.SetDefault("sentiment.mention_interval", "15m")
	v.SetDefault("sentiment.trend_interval", "30m")
	v.SetDefault("sentiment.mention_warmup", "5s")
	v.SetDefault("sentiment.trend_warmup", "10s")
	v.SetDefault("sentiment.request_delay", "2s")
	v.SetDefault("sentiment.max_results", 10)
	v.SetDefault("sentiment.tracked_terms", []string{
		"P2E", "PlayToEarn", "GameFi", "crypto gaming", "blockchain gaming",
		"airdrop", "crypto airdrop", "token airdrop", "free crypto",
		"DeFi", "decentralized finance", "yield farming", "liquidity mining",
		"NFT", "non-fungible token", "NFT gaming", "crypto collectibles",
		"altcoin", "new listing", "crypto launch", "token launch",
	})
	v.SetDefault("sentiment.priority_terms", []string{"P2E", "airdrop", "GameFi"})
	v.SetDefault("sentiment.trend_terms", []string{"P2E", "airdrop"})
	v.SetDefault("sentiment.positive_words", []string{
		"good", "great", "amazing", "love", "best", "awesome",
		"bullish", "moon", "gem", "opportunity",
	})
	v.SetDefault("sentiment.negative_words", []string{
		"bad", "terrible", "hate", "worst", "scam", "dump",
		"bearish", "rug", "avoid", "warning",
	})

	v.SetDefault("query.denylist", []string{
		"Bitcoin", "Ethereum", "Tether", "BNB", "Solana", "XRP", "USDC", "Dogecoin",
	})

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
