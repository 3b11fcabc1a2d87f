// Package cli は督促サービスのコマンドラインインターフェースを提供する。
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/reminder/internal/config"
)

// RootOptions は全サブコマンド共通の設定。
type RootOptions struct {
	// Environ が nil でない場合、プロセスの環境変数の代わりに使う。
	Environ map[string]string
}

func (o *RootOptions) loadConfig() (config.Config, error) {
	if o.Environ != nil {
		return config.LoadFrom(o.Environ)
	}
	return config.Load()
}

// NewRootCommand は reminder コマンドを生成する。
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "請求書の督促ワークフローを実行する",
		Long: `請求書を督促段階に沿って進めるサービス。

第1督促の請求書は第2督促へ、第2督促の請求書は無効化へ、通知メールを送信してから1段階ずつ進める。
設定はすべて環境変数から読み込む。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	return cmd
}
