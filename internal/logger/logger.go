// Package logger は構造化ログ用の zerolog.Logger を生成する。
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New は実行環境に応じた zerolog.Logger を標準出力向けに返す。
func New(appEnv string) zerolog.Logger {
	return NewTo(os.Stdout, appEnv)
}

// NewTo は出力先を指定して zerolog.Logger を返す。
// 開発環境では人間が読みやすいコンソール形式、それ以外ではJSON形式で出力する。
func NewTo(w io.Writer, appEnv string) zerolog.Logger {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	if env == "development" || env == "dev" {
		cw := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.TimeFormat = "2006-01-02 15:04:05"
		})
		return zerolog.New(cw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Nop は何も出力しないロガーを返す。テスト用。
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}
