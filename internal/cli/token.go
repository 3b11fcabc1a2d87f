package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/reminder/pkg/middleware"
)

// NewTokenCommand は管理用APIのアクセストークンを発行する token コマンドを生成する。
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "管理用APIのアクセストークンを発行する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.AdminAPIEnabled() {
				return errors.New("JWT_SECRETが設定されていません")
			}
			token, err := middleware.GenerateJWT(cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "トークンの主体")
	cmd.Flags().DurationVar(&ttl, "ttl", middleware.DefaultTokenTTL, "トークンの有効期間")
	return cmd
}
