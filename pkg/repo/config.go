package repo

import (
	"encoding/json"
	"os"
	"path"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

type Duration time.Duration

func (d *Duration) MarshalText() (text []byte, err error) {
	return []byte(time.Duration(*d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	x, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(x)
	return nil
}

func StringToTimeDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(Duration(5)) {
			return data, nil
		}

		d, err := time.ParseDuration(data.(string))
		if err != nil {
			return nil, err
		}
		return Duration(d), nil
	}
}

func (d *Duration) ToDuration() time.Duration {
	return time.Duration(*d)
}

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

type Config struct {
	Vault   Vault   `mapstructure:"vault" toml:"vault"`
	Storage Storage `mapstructure:"storage" toml:"storage"`
	Ledger  Ledger  `mapstructure:"ledger" toml:"ledger"`
	Keeper  Keeper  `mapstructure:"keeper" toml:"keeper"`
	API     API     `mapstructure:"api" toml:"api"`
	Monitor Monitor `mapstructure:"monitor" toml:"monitor"`
	Log     Log     `mapstructure:"log" toml:"log"`
}

type Vault struct {
	// position or share
	Variant string `mapstructure:"variant" toml:"variant"`

	// unix seconds of epoch 0
	GenesisTime    int64    `mapstructure:"genesis_time" toml:"genesis_time"`
	EpochDuration  Duration `mapstructure:"epoch_duration" toml:"epoch_duration"`
	MaturityWindow uint64   `mapstructure:"maturity_window" toml:"maturity_window"`

	// when false only the owner may call apply rewards
	PermissionlessRewards bool `mapstructure:"permissionless_rewards" toml:"permissionless_rewards"`
	VerifyConcurrency     int  `mapstructure:"verify_concurrency" toml:"verify_concurrency"`
}

type Storage struct {
	KvType      string `mapstructure:"kv_type" toml:"kv_type"`
	KvCacheSize int    `mapstructure:"kv_cache_size" toml:"kv_cache_size"`
	Sync        bool   `mapstructure:"sync" toml:"sync"`
}

type Ledger struct {
	AccountCacheSize int `mapstructure:"account_cache_size" toml:"account_cache_size"`
}

type Keeper struct {
	Enable          bool     `mapstructure:"enable" toml:"enable"`
	Interval        Duration `mapstructure:"interval" toml:"interval"`
	MaxQueueEntries uint64   `mapstructure:"max_queue_entries" toml:"max_queue_entries"`
	RetryLimit      uint     `mapstructure:"retry_limit" toml:"retry_limit"`
	RetryWait       Duration `mapstructure:"retry_wait" toml:"retry_wait"`
}

type API struct {
	Enable         bool     `mapstructure:"enable" toml:"enable"`
	Port           int64    `mapstructure:"port" toml:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	Limiter        JLimiter `mapstructure:"limiter" toml:"limiter"`
}

type JLimiter struct {
	Interval Duration `mapstructure:"interval" toml:"interval"`
	Quantum  int64    `mapstructure:"quantum" toml:"quantum"`
	Capacity int64    `mapstructure:"capacity" toml:"capacity"`
	Enable   bool     `mapstructure:"enable" toml:"enable"`
}

type Monitor struct {
	Enable bool `mapstructure:"enable" toml:"enable"`
}

type Log struct {
	Level            string    `mapstructure:"level" toml:"level"`
	ReportCaller     bool      `mapstructure:"report_caller" toml:"report_caller"`
	EnableColor      bool      `mapstructure:"enable_color" toml:"enable_color"`
	DisableTimestamp bool      `mapstructure:"disable_timestamp" toml:"disable_timestamp"`
	Module           LogModule `mapstructure:"module" toml:"module"`
}

type LogModule struct {
	Storage string `mapstructure:"storage" toml:"storage"`
	Ledger  string `mapstructure:"ledger" toml:"ledger"`
	Vault   string `mapstructure:"vault" toml:"vault"`
	Keeper  string `mapstructure:"keeper" toml:"keeper"`
	API     string `mapstructure:"api" toml:"api"`
}

func (c *Config) Bytes() ([]byte, error) {
	ret, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func DefaultConfig() *Config {
	return &Config{
		Vault: Vault{
			Variant:               VariantShare,
			GenesisTime:           DefaultGenesisTime,
			EpochDuration:         Duration(7 * 24 * time.Hour),
			MaturityWindow:        DefaultMaturityWindow,
			PermissionlessRewards: false,
			VerifyConcurrency:     4,
		},
		Storage: Storage{
			KvType:      KVStorageTypeLeveldb,
			KvCacheSize: KVStorageCacheSize,
			Sync:        KVStorageSync,
		},
		Ledger: Ledger{
			AccountCacheSize: 1024,
		},
		Keeper: Keeper{
			Enable:          true,
			Interval:        Duration(time.Minute),
			MaxQueueEntries: 100,
			RetryLimit:      5,
			RetryWait:       Duration(500 * time.Millisecond),
		},
		API: API{
			Enable:         true,
			Port:           8881,
			AllowedOrigins: []string{"*"},
			Limiter: JLimiter{
				Interval: Duration(50 * time.Millisecond),
				Quantum:  500,
				Capacity: 10000,
				Enable:   false,
			},
		},
		Monitor: Monitor{
			Enable: true,
		},
		Log: Log{
			Level:            "info",
			ReportCaller:     false,
			EnableColor:      true,
			DisableTimestamp: false,
			Module: LogModule{
				Storage: "info",
				Ledger:  "info",
				Vault:   "info",
				Keeper:  "info",
				API:     "info",
			},
		},
	}
}

// Validate rejects settings the vault cannot run with.
func (c *Config) Validate() error {
	switch c.Vault.Variant {
	case VariantPosition, VariantShare:
	default:
		return errors.Errorf("unsupported vault variant %q, expect %s or %s", c.Vault.Variant, VariantPosition, VariantShare)
	}
	if c.Vault.EpochDuration.ToDuration() < time.Second {
		return errors.Errorf("epoch duration %s is too short", c.Vault.EpochDuration.String())
	}
	if c.Vault.MaturityWindow == 0 {
		return errors.New("maturity window must be positive")
	}
	switch c.Storage.KvType {
	case KVStorageTypeLeveldb, KVStorageTypePebble, KVStorageTypeMemory:
	default:
		return errors.Errorf("unknown kv type %s, expect leveldb, pebble or memory", c.Storage.KvType)
	}
	return nil
}

func LoadConfig(repoRoot string) (*Config, error) {
	cfg, err := func() (*Config, error) {
		cfg := DefaultConfig()
		cfgPath := path.Join(repoRoot, CfgFileName)
		if !fileExist(cfgPath) {
			err := os.MkdirAll(repoRoot, 0755)
			if err != nil {
				return nil, errors.Wrap(err, "failed to build default config")
			}

			if err := writeConfigWithEnv(cfgPath, cfg); err != nil {
				return nil, errors.Wrap(err, "failed to build default config")
			}
		} else {
			if err := CheckWritable(repoRoot); err != nil {
				return nil, err
			}
			if err := readConfigFromFile(cfgPath, cfg); err != nil {
				return nil, err
			}
		}

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

func fileExist(p string) bool {
	_, err := os.Stat(p)
	return err == nil || !os.IsNotExist(err)
}
