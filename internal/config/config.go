package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevTokenSecret is used when no secret is configured outside production.
const DevTokenSecret = "carebook-dev-secret"

type Config struct {
	APIPort  int `mapstructure:"apiPort"`
	Database struct {
		Type            string        `mapstructure:"type"`
		Path            string        `mapstructure:"path"`
		DSN             string        `mapstructure:"dsn"`
		MaxOpenConns    int           `mapstructure:"maxOpenConns"`
		MaxIdleConns    int           `mapstructure:"maxIdleConns"`
		ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	} `mapstructure:"database"`
	Auth struct {
		TokenSecret string        `mapstructure:"tokenSecret"`
		TokenTTL    time.Duration `mapstructure:"tokenTTL"`
		BcryptCost  int           `mapstructure:"bcryptCost"`
	} `mapstructure:"auth"`
	Appointments struct {
		TrustClientOwner bool `mapstructure:"trustClientOwner"`
	} `mapstructure:"appointments"`
	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"rateLimit"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowedOrigins"`
	} `mapstructure:"cors"`
}

// keys that may be overridden from the environment, e.g. DATABASE_TYPE.
var envKeys = []string{
	"apiPort",
	"database.type", "database.path", "database.dsn",
	"database.maxOpenConns", "database.maxIdleConns", "database.connMaxLifetime",
	"auth.tokenSecret", "auth.tokenTTL", "auth.bcryptCost",
	"appointments.trustClientOwner",
	"rateLimit.rps", "rateLimit.burst",
	"cors.allowedOrigins",
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. A missing file is not an error; a malformed one is.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := applyDefaults(&cfg, v); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded: port=%d db=%s trustClientOwner=%v",
		cfg.APIPort, cfg.Database.Type, cfg.Appointments.TrustClientOwner)
	return &cfg, nil
}

func applyDefaults(cfg *Config, v *viper.Viper) error {
	if cfg.APIPort == 0 {
		cfg.APIPort = 8081
		log.Println("APIPort not specified, using default 8081")
	}

	switch cfg.Database.Type {
	case "":
		cfg.Database.Type = "sqlite"
		log.Println("Database type not specified, using sqlite")
	case "sqlite", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "data/carebook.db"
		log.Println("Database path not specified, using default data/carebook.db")
	}
	if cfg.Database.Type != "sqlite" && cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for %s", cfg.Database.Type)
	}

	if cfg.Auth.TokenSecret == "" {
		if os.Getenv("CAREBOOK_ENV") == "prod" {
			return errors.New("auth.tokenSecret is required in production")
		}
		cfg.Auth.TokenSecret = DevTokenSecret
		log.Println("Token secret not specified, using development secret")
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 10
	}

	// an explicit rps of 0 disables throttling
	if !v.IsSet("rateLimit.rps") {
		cfg.RateLimit.RPS = 5
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 10
	}

	if !v.IsSet("cors.allowedOrigins") || len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return nil
}
