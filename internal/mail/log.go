package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Log は送信せずに内容をログに出力する。開発環境用。
type Log struct {
	logger zerolog.Logger
}

// NewLog は新しいログ出力用の Sender を生成する。
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "mail").Logger()}
}

// Send はメールの内容をログに出力する。
func (l *Log) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkHeader(to, subject); err != nil {
		return err
	}
	l.logger.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("メールを送信しました（ログ出力のみ）")
	return nil
}
