package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/reminder/internal/logger"
	"github.com/nao1215/reminder/internal/reminder"
)

// process コマンドの終了コード。
const (
	ExitOK      = 0
	ExitPartial = 1
	ExitFailed  = 2
)

// ExitError は終了コードを伴うエラー。
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// NewProcessCommand は督促スイープを1回実行する process コマンドを生成する。
// cronなど外部のスケジューラーから呼び出すことを想定する。
func NewProcessCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "督促スイープを1回実行し、結果をJSONで出力する",
		Long: `督促スイープを1回実行し、結果をJSONで標準出力に書き出す。

終了コード:
  0  すべて成功
  1  一部の請求書で失敗（次回のスイープで再試行される）
  2  どの状態の請求書一覧も取得できなかった`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log := logger.NewTo(cmd.ErrOrStderr(), cfg.AppEnv)

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			report, runErr := a.engine.ProcessReminders(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("レポートの出力に失敗: %w", err)
			}

			switch {
			case runErr != nil:
				return &ExitError{Code: ExitFailed, Err: runErr}
			case report.Status == reminder.StatusPartial:
				return &ExitError{Code: ExitPartial, Err: fmt.Errorf("%d 件の失敗がありました", len(report.Failures))}
			}
			return nil
		},
	}
}
