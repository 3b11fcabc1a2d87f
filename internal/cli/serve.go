package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/reminder/internal/logger"
	"github.com/nao1215/reminder/internal/reminder"
)

// NewServeCommand はHTTPサーバーを起動する serve コマンドを生成する。
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTPサーバーを起動する",
		Long: `HTTPサーバーを起動する。

  POST /api/v1/reminders/process   督促スイープを1回実行する
  GET  /api/v1/invoices            請求書一覧（JWT_SECRET設定時のみ、要認証）
  GET  /health, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewTo(cmd.ErrOrStderr(), cfg.AppEnv)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := reminder.NewServer(a.engine, a.store, reminder.ServerConfig{
				JWTSecret:          cfg.JWTSecret,
				CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			}, log)
			return srv.Run(ctx, cfg.Addr())
		},
	}
}
