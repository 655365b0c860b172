package usecase

import (
	"fmt"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
)

// ValidateDaily は日足クエリに絞り込み条件が1つ以上指定されているかを検証します。
func ValidateDaily(q entity.Query) error {
	if q.Code == "" && q.Output == "" && q.Start == nil && q.End == nil {
		return &domain.UsageError{}
	}
	return validateTarget(q)
}

// ValidateMinute は分足クエリを検証します。
// 他の条件が指定されていても、intervalが未指定の場合は常にエラーになります。
func ValidateMinute(q entity.Query) error {
	if q.Code == "" && !q.Interval.IsSet() && q.Output == "" && q.Start == nil && q.End == nil {
		return &domain.UsageError{}
	}
	if !q.Interval.IsSet() {
		return domain.ErrIntervalNotSet
	}
	return validateTarget(q)
}

// validateTarget は出力先の導出に必要な値が揃っているかを確認します。
func validateTarget(q entity.Query) error {
	if q.Code == "" && q.Output == "" {
		return domain.NewUsageError("Code is required when output is not set.")
	}
	if q.Code == "" && q.Format == entity.FormatSQLite3 {
		return domain.NewUsageError("Code is required for sqlite3 output.")
	}
	return nil
}

// ResolveOutputPath は出力パスを返します。未指定の場合は "<code>.<format>" を導出します。
func ResolveOutputPath(q entity.Query) string {
	if q.Output != "" {
		return q.Output
	}
	return fmt.Sprintf("%s.%s", q.Code, q.Format)
}
