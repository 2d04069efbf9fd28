package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".copytrade"
	envPrefix  = "CT"

	KeyEndpoint           = "api.endpoint"
	KeyAppID              = "api.app_id"
	KeyTraderToken        = "trader.token"
	KeyDemoTraderToken    = "trader.demo_token"
	KeySimulateDemoToReal = "copy.simulate_demo_to_real"
	KeyRecheckDelay       = "copy.recheck_delay"
	KeyCopyTimeout        = "copy.timeout"
	KeyPingInterval       = "ws.ping_interval"
	KeyLogLevel           = "log.level"
	KeyCopiersPath        = "copiers.path"
	KeyHistoryPath        = "history.path"
	KeySecretsBackend     = "secrets.backend"
	KeySecretsDir         = "secrets.dir"
)

const (
	DefaultEndpoint     = "wss://ws.derivws.com/websockets/v3"
	DefaultAppID        = "70344"
	DefaultRecheckDelay = 400 * time.Millisecond
	DefaultCopyTimeout  = 2 * time.Minute
	DefaultPingInterval = 30 * time.Second
	DefaultLogLevel     = "warn"

	SecretsBackendChain = "chain"
	SecretsBackendFile  = "file"
	SecretsBackendPass  = "pass"
)

type Settings struct {
	API     APISettings
	Trader  TraderSettings
	Copy    CopySettings
	WS      WSSettings
	Log     LogSettings
	Storage StorageSettings
	Secrets SecretsSettings
}

type APISettings struct {
	Endpoint string
	AppID    string
}

type TraderSettings struct {
	Token     string
	DemoToken string
}

type CopySettings struct {
	SimulateDemoToReal bool
	RecheckDelay       time.Duration
	Timeout            time.Duration
}

type WSSettings struct {
	PingInterval time.Duration
}

type LogSettings struct {
	Level string
}

type StorageSettings struct {
	CopiersPath string
	HistoryPath string
}

type SecretsSettings struct {
	Backend string
	Dir     string
}

// Load reads ~/.copytrade/config.toml when present and overlays CT_* environment
// variables. A missing config file is not an error.
func Load(cfg *viper.Viper) (Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(baseDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	applyDefaults(cfg, baseDir)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	settings := Settings{
		API: APISettings{
			Endpoint: strings.TrimSpace(cfg.GetString(KeyEndpoint)),
			AppID:    strings.TrimSpace(cfg.GetString(KeyAppID)),
		},
		Trader: TraderSettings{
			Token:     strings.TrimSpace(cfg.GetString(KeyTraderToken)),
			DemoToken: strings.TrimSpace(cfg.GetString(KeyDemoTraderToken)),
		},
		Copy: CopySettings{
			SimulateDemoToReal: cfg.GetBool(KeySimulateDemoToReal),
			RecheckDelay:       cfg.GetDuration(KeyRecheckDelay),
			Timeout:            cfg.GetDuration(KeyCopyTimeout),
		},
		WS:  WSSettings{PingInterval: cfg.GetDuration(KeyPingInterval)},
		Log: LogSettings{Level: strings.ToLower(strings.TrimSpace(cfg.GetString(KeyLogLevel)))},
		Storage: StorageSettings{
			CopiersPath: cfg.GetString(KeyCopiersPath),
			HistoryPath: cfg.GetString(KeyHistoryPath),
		},
		Secrets: SecretsSettings{
			Backend: strings.ToLower(strings.TrimSpace(cfg.GetString(KeySecretsBackend))),
			Dir:     cfg.GetString(KeySecretsDir),
		},
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func applyDefaults(cfg *viper.Viper, baseDir string) {
	cfg.SetDefault(KeyEndpoint, DefaultEndpoint)
	cfg.SetDefault(KeyAppID, DefaultAppID)
	cfg.SetDefault(KeyTraderToken, "")
	cfg.SetDefault(KeyDemoTraderToken, "")
	cfg.SetDefault(KeySimulateDemoToReal, true)
	cfg.SetDefault(KeyRecheckDelay, DefaultRecheckDelay)
	cfg.SetDefault(KeyCopyTimeout, DefaultCopyTimeout)
	cfg.SetDefault(KeyPingInterval, DefaultPingInterval)
	cfg.SetDefault(KeyLogLevel, DefaultLogLevel)
	cfg.SetDefault(KeyCopiersPath, filepath.Join(baseDir, "copiers.toml"))
	cfg.SetDefault(KeyHistoryPath, filepath.Join(baseDir, "history.db"))
	cfg.SetDefault(KeySecretsBackend, SecretsBackendChain)
	cfg.SetDefault(KeySecretsDir, filepath.Join(baseDir, "secrets"))
}

func (s Settings) Validate() error {
	endpoint, err := url.Parse(s.API.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeyEndpoint, err)
	}
	if endpoint.Scheme != "ws" && endpoint.Scheme != "wss" {
		return fmt.Errorf("invalid %s %q: scheme must be ws or wss", KeyEndpoint, s.API.Endpoint)
	}
	if s.API.AppID == "" {
		return fmt.Errorf("%s must not be empty", KeyAppID)
	}
	if s.Copy.RecheckDelay < 0 {
		return fmt.Errorf("%s must not be negative", KeyRecheckDelay)
	}
	if s.Copy.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyCopyTimeout)
	}
	if s.WS.PingInterval <= 0 {
		return fmt.Errorf("%s must be positive", KeyPingInterval)
	}
	if s.Storage.CopiersPath == "" {
		return fmt.Errorf("%s must not be empty", KeyCopiersPath)
	}
	if s.Storage.HistoryPath == "" {
		return fmt.Errorf("%s must not be empty", KeyHistoryPath)
	}

	switch s.Secrets.Backend {
	case SecretsBackendChain, SecretsBackendFile, SecretsBackendPass:
	default:
		return fmt.Errorf("unsupported %s %q", KeySecretsBackend, s.Secrets.Backend)
	}

	return nil
}
