package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"signal_monitor/internal/detectors"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB string `yaml:"db_dsn"`

	Market struct {
		CandlesBaseURL     string `yaml:"candles_base_url"`     // CryptoCompare
		GlobalBaseURL      string `yaml:"global_base_url"`      // CoinGecko
		DerivativesBaseURL string `yaml:"derivatives_base_url"` // Binance futures
		StreamURL          string `yaml:"stream_url"`           // Binance ws
		StreamSymbols      []string
		RequestTimeout     time.Duration
	} `yaml:"market"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	// Цикл проверок
	CheckInterval time.Duration
	FetchTimeout  time.Duration

	CatalystsFile string `yaml:"catalysts_file"`

	Report struct {
		MorningAt string   `yaml:"morning_at"` // HH:MM
		EveningAt string   `yaml:"evening_at"`
		Watchlist []string `yaml:"watchlist"`
	} `yaml:"report"`

	Acceleration detectors.AccelerationConfig `yaml:"acceleration"`
	Momentum     detectors.MomentumConfig     `yaml:"momentum"`
	Spike        detectors.SpikeConfig        `yaml:"spike"`
	BTCRound     detectors.RoundLevelConfig   `yaml:"btc_round"`
	GoldRound    detectors.RoundLevelConfig   `yaml:"gold_round"`
	ETHBTCLevels detectors.LevelCrossConfig   `yaml:"ethbtc_levels"`
	BTCExtremum  detectors.ExtremumConfig     `yaml:"btc_extremum"`
	GoldExtremum detectors.ExtremumConfig     `yaml:"gold_extremum"`
	Divergence   detectors.DivergenceConfig   `yaml:"divergence"`
	Derivatives  detectors.DerivativesConfig  `yaml:"derivatives"`
	Dominance    detectors.DominanceConfig    `yaml:"dominance"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	config := defaults()
	config.CheckInterval = durationFromEnv("CHECK_INTERVAL", "5m")
	config.FetchTimeout = durationFromEnv("FETCH_TIMEOUT", "30s")
	config.Market.RequestTimeout = durationFromEnv("MARKET_REQUEST_TIMEOUT", "15s")
	config.Market.StreamSymbols = []string{"btcusdt", "ethusdt", "paxgusdt"}

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if chat := os.Getenv(chatTelegramENV); chat != "" {
		if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}

	// точечная подкрутка детекторов без перевыкатки конфига
	config.Spike.MinChange = floatFromEnv("SPIKE_MIN_CHANGE", config.Spike.MinChange)
	config.Spike.PeriodMin = intFromEnv("SPIKE_PERIOD_MIN", config.Spike.PeriodMin)
	config.Acceleration.MinDiff = floatFromEnv("ACCELERATION_MIN_DIFF", config.Acceleration.MinDiff)
	config.Momentum.MinChange = floatFromEnv("MOMENTUM_MIN_CHANGE", config.Momentum.MinChange)
	config.Momentum.Count = intFromEnv("MOMENTUM_COUNT", config.Momentum.Count)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// defaults повторяют боевые настройки мониторинга. YAML и env
// перекрывают их точечно.
func defaults() Config {
	var c Config

	c.Market.CandlesBaseURL = "https://min-api.cryptocompare.com"
	c.Market.GlobalBaseURL = "https://api.coingecko.com"
	c.Market.DerivativesBaseURL = "https://fapi.binance.com"
	c.Market.StreamURL = "wss://stream.binance.com:9443"

	c.CatalystsFile = "configs/catalysts.yaml"
	c.Report.MorningAt = "09:00"
	c.Report.EveningAt = "21:00"
	c.Report.Watchlist = []string{"BTC", "ETH", "PAXG"}

	c.Acceleration = detectors.AccelerationConfig{
		Enabled: true, Symbol: "BTC", Quote: "USD",
		PeriodMin: 30, MinDiff: 0.5, Cooldown: 30 * time.Minute,
	}
	c.Momentum = detectors.MomentumConfig{
		Enabled: true, Symbol: "BTC", Quote: "USD",
		PeriodMin: 5, Count: 4, MinChange: 0.2,
		Direction: detectors.MomentumBoth, Cooldown: 60 * time.Minute,
	}
	c.Spike = detectors.SpikeConfig{
		Enabled: true, Symbol: "BTC", Quote: "USD",
		PeriodMin: 5, MinChange: 0.6, Cooldown: 120 * time.Minute,
	}
	c.BTCRound = detectors.RoundLevelConfig{
		Enabled: true, Name: "btc_round", Symbol: "BTC", Quote: "USD",
		Increment: 2000, RSIPeriod: 14, Cooldown: 240 * time.Minute,
	}
	c.GoldRound = detectors.RoundLevelConfig{
		Enabled: true, Name: "gold_round", Symbol: "PAXG", Quote: "USD",
		Increment: 50, RSIPeriod: 14, Cooldown: 180 * time.Minute,
	}
	c.ETHBTCLevels = detectors.LevelCrossConfig{
		Enabled: true, Name: "ethbtc_levels", Symbol: "ETH", Quote: "BTC",
		Levels:   []float64{0.035, 0.040, 0.045, 0.050, 0.055, 0.060},
		Cooldown: 90 * time.Minute,
	}
	c.BTCExtremum = detectors.ExtremumConfig{
		Enabled: true, Name: "btc_extremum", Symbol: "BTC", Quote: "USD",
		WindowHours: 168, MinVolumeVsAvg: -50, Cooldown: 240 * time.Minute,
	}
	c.GoldExtremum = detectors.ExtremumConfig{
		Enabled: true, Name: "gold_extremum", Symbol: "PAXG", Quote: "USD",
		WindowHours: 168, MinVolumeVsAvg: -50, Cooldown: 240 * time.Minute,
	}
	c.Divergence = detectors.DivergenceConfig{
		Enabled: true, Base: "PAXG", Ref: "BTC", Quote: "USD",
		Horizons: []detectors.DivergenceHorizon{
			{Hours: 1, Threshold: 1.0},
			{Hours: 4, Threshold: 2.0},
			{Hours: 8, Threshold: 3.0},
			{Hours: 24, Threshold: 4.0},
		},
		AvgVolumeHours: 720, MinVolumeVsAvg: -50,
		Cooldown: 120 * time.Minute,
	}
	c.Derivatives = detectors.DerivativesConfig{
		Enabled:        true,
		FundingExtreme: 0.08, FundingVeryExtreme: 0.10,
		OIHigh: 30, OIExtreme: 35,
		Cooldown: 360 * time.Minute,
	}
	c.Dominance = detectors.DominanceConfig{
		Enabled:     true,
		Thresholds:  []float64{54, 56, 57.5, 58.5},
		MinMomentum: 0.4,
		EdgeMargin:  0.3,
		Cooldown:    360 * time.Minute,
	}
	return c
}

// Validate проверяет конфиг до старта: лучше упасть сразу, чем молча
// не слать сигналы.
func (c *Config) Validate() error {
	cooldowns := map[string]time.Duration{
		"acceleration":  c.Acceleration.Cooldown,
		"momentum":      c.Momentum.Cooldown,
		"spike":         c.Spike.Cooldown,
		"btc_round":     c.BTCRound.Cooldown,
		"gold_round":    c.GoldRound.Cooldown,
		"ethbtc_levels": c.ETHBTCLevels.Cooldown,
		"btc_extremum":  c.BTCExtremum.Cooldown,
		"gold_extremum": c.GoldExtremum.Cooldown,
		"divergence":    c.Divergence.Cooldown,
		"derivatives":   c.Derivatives.Cooldown,
		"dominance":     c.Dominance.Cooldown,
	}
	for name, cd := range cooldowns {
		if cd <= 0 {
			return fmt.Errorf("config: %s cooldown must be positive, got %s", name, cd)
		}
	}

	if c.CheckInterval <= 0 {
		return fmt.Errorf("config: check interval must be positive")
	}
	if c.Acceleration.PeriodMin <= 0 || c.Momentum.PeriodMin <= 0 || c.Spike.PeriodMin <= 0 {
		return fmt.Errorf("config: detector periods must be positive")
	}
	if c.Momentum.Count <= 0 {
		return fmt.Errorf("config: momentum count must be positive")
	}
	if c.BTCRound.Increment <= 0 || c.GoldRound.Increment <= 0 {
		return fmt.Errorf("config: round level increment must be positive")
	}
	if len(c.ETHBTCLevels.Levels) == 0 {
		return fmt.Errorf("config: ethbtc levels list is empty")
	}
	if !sort.Float64sAreSorted(c.ETHBTCLevels.Levels) {
		return fmt.Errorf("config: ethbtc levels must be sorted ascending")
	}
	if c.BTCExtremum.WindowHours <= 0 || c.GoldExtremum.WindowHours <= 0 {
		return fmt.Errorf("config: extremum window must be positive")
	}
	for _, h := range c.Divergence.Horizons {
		if h.Hours <= 0 || h.Threshold <= 0 {
			return fmt.Errorf("config: divergence horizon %dh threshold %.2f is invalid", h.Hours, h.Threshold)
		}
	}
	if c.Derivatives.FundingVeryExtreme < c.Derivatives.FundingExtreme {
		return fmt.Errorf("config: funding very-extreme below extreme")
	}
	if c.Derivatives.OIExtreme < c.Derivatives.OIHigh {
		return fmt.Errorf("config: OI extreme below high")
	}
	if len(c.Dominance.Thresholds) != 4 {
		return fmt.Errorf("config: dominance needs exactly 4 thresholds, got %d", len(c.Dominance.Thresholds))
	}
	if !sort.Float64sAreSorted(c.Dominance.Thresholds) {
		return fmt.Errorf("config: dominance thresholds must be sorted ascending")
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
