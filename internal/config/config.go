// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	IdentityProvider        `yaml:"identity_provider"`
	PaymentProvider         `yaml:"payment_provider"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки публикации в очередь ручной реконсиляции.
// При пустом URL публикация отключена, пропуски только логируются.
type RabbitMQ struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// IdentityProvider структура для настройки клиента identity-провайдера
type IdentityProvider struct {
	IdentityBaseURL string `yaml:"identity_base_url"`
	ServiceKey      string `yaml:"service_key"`
	JWTSecretKey    string `yaml:"jwt_secret_key"`
}

// PaymentProvider структура для настройки клиента платёжного провайдера
type PaymentProvider struct {
	PaymentBaseURL string `yaml:"payment_base_url"`
	APIKey         string `yaml:"api_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	PriceID        string `yaml:"price_id"`
	SiteBaseURL    string `yaml:"site_base_url"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"IdentityProvider:\n"+
			"  BaseURL: %s\n"+
			"PaymentProvider:\n"+
			"  BaseURL: %s\n"+
			"  PriceID: %s\n"+
			"  SiteBaseURL: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.MigrationsPath,
		c.AddressRedis,
		c.User,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.TimeoutRedis,
		c.URL,
		c.Exchange,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.IdentityBaseURL,
		c.PaymentBaseURL,
		c.PriceID,
		c.SiteBaseURL,
	)
}
