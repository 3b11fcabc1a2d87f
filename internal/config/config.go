// Package config は環境変数から督促サービスの設定を読み込む。
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// ストアの種類。
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// メール送信手段の種類。
const (
	EmailSMTP = "smtp"
	EmailHTTP = "http"
	EmailLog  = "log"
)

// Config は督促サービス全体の設定。
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"production"`
	Port   int    `env:"PORT" envDefault:"8087" validate:"min=1,max=65535"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite" validate:"oneof=sqlite postgres memory"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"reminder.db" validate:"required_if=StoreDriver sqlite"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`

	// JWTSecret が空の場合、管理用APIは無効になる。
	JWTSecret          string   `env:"JWT_SECRET"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"log" validate:"oneof=smtp http log"`

	SMTPHost     string `env:"SMTP_HOST" validate:"required_if=EmailProvider smtp"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587" validate:"min=1,max=65535"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" validate:"required_if=EmailProvider smtp,omitempty,email"`

	MailAPIURL    string `env:"MAIL_API_URL" validate:"required_if=EmailProvider http,omitempty,url"`
	MailAPIKey    string `env:"MAIL_API_KEY" validate:"required_if=EmailProvider http"`
	MailAPISender string `env:"MAIL_API_SENDER" validate:"required_if=EmailProvider http,omitempty,email"`

	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	SweepConcurrency int           `env:"SWEEP_CONCURRENCY" envDefault:"4" validate:"min=1,max=256"`
}

// Load はプロセスの環境変数から設定を読み込み、検証する。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom は与えられた環境変数の集合から設定を読み込み、検証する。
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate は設定値の整合性を検証する。
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("設定が不正です: %w", err)
	}
	return nil
}

// Addr はHTTPサーバーの待ち受けアドレスを返す。
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AdminAPIEnabled は管理用APIを公開するかどうかを返す。
func (c Config) AdminAPIEnabled() bool {
	return c.JWTSecret != ""
}
