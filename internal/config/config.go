package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	OpenAIAPIKey  string
	AMQPURL       string
	HTTPAddr      string
	LogLevel      string
}

var defaults = map[string]string{
	"db_driver":      "mysql",
	"db_host":        "localhost",
	"db_port":        "3306",
	"db_user":        "progressuser",
	"db_password":    "progresspassword",
	"db_name":        "project_progress",
	"redis_host":     "localhost",
	"redis_port":     "6379",
	"session_secret": "default-secret-key-change-me",
	"gin_mode":       "debug",
	"openai_api_key": "",
	"amqp_url":       "",
	"http_addr":      ":8080",
	"log_level":      "info",
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        v.GetString("db_user"),
		DBPassword:    v.GetString("db_password"),
		DBName:        v.GetString("db_name"),
		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		SessionSecret: v.GetString("session_secret"),
		GinMode:       v.GetString("gin_mode"),
		OpenAIAPIKey:  v.GetString("openai_api_key"),
		AMQPURL:       v.GetString("amqp_url"),
		HTTPAddr:      v.GetString("http_addr"),
		LogLevel:      v.GetString("log_level"),
	}
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// DSN builds the data source name for the configured driver. For sqlite,
// DBName is the database file path.
func (c *Config) DSN() (string, error) {
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName), nil
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName), nil
	case "sqlite":
		return c.DBName, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}
}
