package configuration

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

// Use returns the process-wide configuration, loading it on first call.
func Use() *Configuration {
	return singleton()
}

type DatabaseOptions struct {
	Name     string `env:"DB_NAME" envDefault:"courierdesk"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type AuthOptions struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type UploadsOptions struct {
	Dir     string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	BaseURL string `env:"UPLOADS_BASE_URL" envDefault:"/uploads"`
}

type Configuration struct {
	Database DatabaseOptions
	Auth     AuthOptions
	Uploads  UploadsOptions

	Address        string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	Origin         string        `env:"ORIGIN" envDefault:"http://localhost:8080"`
	Environment    string        `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	logger *logrus.Logger
}

func (c *Configuration) load(envFiles []string) error {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("failed to load env files: %w", err)
		}
	}
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse env: %w", err)
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	c.logger = logrus.New()
	c.logger.SetLevel(level)
	if c.Environment == Production {
		c.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}
