package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
	"stock_chartdata/internal/feature/chartdata/usecase"
)

// ChartUsecase はチャートエクスポートのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（transport）側で定義します。
type ChartUsecase interface {
	ExportDaily(ctx context.Context, q entity.Query) (*usecase.ExportResult, error)
	ExportMinute(ctx context.Context, q entity.Query) (*usecase.ExportResult, error)
}

// Factory はフラグ解析後に、-vの回数に応じたロガーでユースケースを組み立てます。
type Factory func(verbosity int) (ChartUsecase, error)

// NewRootCommand は daily / minute サブコマンドを持つルートコマンドを生成します。
func NewRootCommand(factory Factory) *cobra.Command {
	root := &cobra.Command{
		Use:           "chartdata",
		Short:         "Get chart data of stocks from the brokerage gateway.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.NewUsageError("%v", err)
	})
	root.AddCommand(NewDailyCommand(factory), NewMinuteCommand(factory))
	return root
}

// NewDailyCommand は日足データを取得する daily コマンドを生成します。
func NewDailyCommand(factory Factory) *cobra.Command {
	var opts commonOptions
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Get daily OHLCV of stocks.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := opts.query(dailyDateLayouts)
			if err != nil {
				return err
			}
			// ゲートウェイに接続する前に検証する
			if err := usecase.ValidateDaily(q); err != nil {
				return err
			}
			uc, err := factory(opts.verbose)
			if err != nil {
				return err
			}
			_, err = uc.ExportDaily(cmd.Context(), q)
			return err
		},
	}
	opts.bind(cmd, "YYYY-MM-DD")
	return cmd
}

// NewMinuteCommand は分足データを取得する minute コマンドを生成します。
func NewMinuteCommand(factory Factory) *cobra.Command {
	var (
		opts     commonOptions
		interval string
	)
	cmd := &cobra.Command{
		Use:   "minute",
		Short: "Get minute OHLCV of stocks.",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := opts.query(minuteDateLayouts)
			if err != nil {
				return err
			}
			if interval != "" {
				iv, err := entity.ParseInterval(interval)
				if err != nil {
					return domain.NewUsageError("Invalid value for '-t' / '--interval': %v", err)
				}
				q.Interval = iv
			}
			if err := usecase.ValidateMinute(q); err != nil {
				return err
			}
			uc, err := factory(opts.verbose)
			if err != nil {
				return err
			}
			_, err = uc.ExportMinute(cmd.Context(), q)
			return err
		},
	}
	cmd.Flags().StringVarP(&interval, "interval", "t", "", "Minute interval. Possible values are ["+entity.IntervalChoices()+"]")
	opts.bind(cmd, "YYYY-MM-DD['T'hh:mm:ss]")
	return cmd
}

// noArgs は位置引数を受け付けず、指定された場合はUsageErrorを返します。
func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return domain.NewUsageError("Got unexpected extra argument (%s)", args[0])
	}
	return nil
}

// Execute はルートコマンドを実行し、プロセスの終了コードを返します。
//
//   - 0: 成功
//   - 2: 使い方の誤り（usageを表示）
//   - 1: その他のエラー
func Execute(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	var ue *domain.UsageError
	if errors.As(err, &ue) {
		if cmd == nil {
			cmd = root
		}
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
		if ue.Message != "" {
			_, _ = fmt.Fprintf(stderr, "\nError: %s\n", ue.Message)
		}
		return 2
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
