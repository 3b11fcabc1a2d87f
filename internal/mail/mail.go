// Package mail は督促メールの送信手段を提供する。
//
// SMTP、HTTPのメール送信API、ログ出力のみの3種類があり、
// 設定の EMAIL_PROVIDER で選択する。
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nao1215/reminder/internal/config"
)

// Sender はメール1通を送信する。
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ErrInvalidHeader は宛先または件名に改行が含まれる場合のエラー。
var ErrInvalidHeader = errors.New("メールヘッダーに改行を含めることはできません")

// New は設定に応じた Sender を生成する。
func New(cfg config.Config, logger zerolog.Logger) (Sender, error) {
	switch cfg.EmailProvider {
	case config.EmailSMTP:
		return NewSMTP(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), nil
	case config.EmailHTTP:
		return NewAPI(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailAPISender, cfg.NotifyTimeout), nil
	case config.EmailLog, "":
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("未知のメール送信手段です: %q", cfg.EmailProvider)
	}
}

func checkHeader(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrInvalidHeader
		}
	}
	return nil
}
