package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	Storage    Storage    `yaml:"storage"`
	ServiceNav ServiceNav `yaml:"servicenav"`
	Billing    Billing    `yaml:"billing"`
	Sync       Sync       `yaml:"sync"`
	Client     Client     `yaml:"client"`

	AdminLogin  string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass   string `yaml:"admin_pass" env:"ADMIN_PASS"`
	FrontendDir string `yaml:"frontend_dir" env:"FRONTEND_DIR" env-default:"./frontend-dist"`
	ErrorLog    string `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:5000"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// SyncTimeout bounds POST /api/sync, which outlives Timeout on large inventories.
	SyncTimeout time.Duration `yaml:"sync_timeout" env:"HTTP_SYNC_TIMEOUT" env-default:"10m"`
}

// Storage selects the SQL backend. DSN wins over the per-field MySQL settings.
type Storage struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"mysql"`
	DSN        string `yaml:"dsn" env:"DATABASE_DSN"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"billing.db"`

	DBUser     string `yaml:"db_user" env:"DB_USER"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-default:"billing"`
}

type ServiceNav struct {
	BaseURL       string        `yaml:"base_url" env:"SERVICENAV_BASE_URL"`
	APIKey        string        `yaml:"api_key" env:"SERVICENAV_API_KEY"`
	Timeout       time.Duration `yaml:"timeout" env:"SERVICENAV_TIMEOUT" env-default:"30s"`
	CompaniesPath string        `yaml:"companies_path" env:"SERVICENAV_COMPANIES_PATH" env-default:"/api/companies"`
	EquipmentPath string        `yaml:"equipment_path" env:"SERVICENAV_EQUIPMENT_PATH" env-default:"/api/companies/{id}/hosts"`
}

// Billing holds the defaults served until settings are saved through the API.
type Billing struct {
	PricePerEquipment float64 `yaml:"price_per_equipment" env:"PRICE_PER_EQUIPMENT" env-default:"9"`
	CacheExpiration   int     `yaml:"cache_expiration" env:"CACHE_EXPIRATION" env-default:"60"`
}

type Sync struct {
	// Interval of the background sync run by `serve`; zero disables it.
	Interval time.Duration `yaml:"interval" env:"SYNC_INTERVAL" env-default:"0s"`
	// ResumeWindow is how long an interrupted run may be resumed; zero always starts a full pass.
	ResumeWindow time.Duration `yaml:"resume_window" env:"SYNC_RESUME_WINDOW" env-default:"1h"`
}

// Client configures the dashboard CLI, which talks to a running server.
type Client struct {
	APIURL          string        `yaml:"api_url" env:"BILLING_API_URL" env-default:"http://localhost:5000"`
	CachePath       string        `yaml:"cache_path" env:"BILLING_CACHE_PATH"`
	CacheKey        string        `yaml:"cache_key" env:"BILLING_CACHE_KEY" env-default:"dashboardData"`
	CacheExpiration time.Duration `yaml:"cache_expiration" env:"BILLING_CACHE_EXPIRATION" env-default:"60m"`
	Timeout         time.Duration `yaml:"timeout" env:"BILLING_CLIENT_TIMEOUT" env-default:"30s"`
}

// Load reads the YAML file at path (CONFIG_PATH or ./config/local.yaml when empty)
// and applies environment overrides. A missing file falls back to the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	var cfg Config

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	return &cfg, nil
}
