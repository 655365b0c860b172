// Package cli はchartdataフィーチャーのcobraコマンドを提供します。
package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
	"stock_chartdata/internal/feature/chartdata/usecase"
)

// 日足で受け付ける日付形式
var dailyDateLayouts = []string{"2006-01-02", "20060102"}

// 分足で受け付ける日付形式（時刻付きを含む）
var minuteDateLayouts = []string{"2006-01-02", "20060102", "2006-01-02T15:04:05", "20060102150405"}

// commonOptions は日足・分足で共通のフラグ値です。
type commonOptions struct {
	code      string
	output    string
	format    string
	startDate string
	endDate   string
	port      int
	verbose   int
}

func (o *commonOptions) bind(cmd *cobra.Command, dateMetavar string) {
	f := cmd.Flags()
	f.StringVarP(&o.code, "code", "c", "", "Stock code to get.")
	f.StringVarP(&o.output, "output", "o", "", "Output filename for code.")
	f.StringVarP(&o.format, "format", "f", string(entity.FormatCSV), "Output format. Possible values are [csv|xls|sqlite3] (default: csv). xls is written as an Excel 2007+ (xlsx) workbook; Excel may warn about the extension.")
	f.StringVarP(&o.startDate, "start-date", "s", "", "Most recent date to get ("+dateMetavar+"). Defaults to today or yesterday if market is open.")
	f.StringVarP(&o.endDate, "end-date", "e", "", "Stops if reached, not included ("+dateMetavar+", optional).")
	f.IntVarP(&o.port, "port", "p", 0, "Port number of the gateway server (optional).")
	f.CountVarP(&o.verbose, "verbose", "v", "Verbosity, repeatable. Info (including the saved file path) is shown by default, -v adds debug.")
}

// query はフラグ値を検証してQueryを組み立てます。不正な値はUsageErrorになります。
func (o *commonOptions) query(layouts []string) (entity.Query, error) {
	format, err := entity.ParseFormat(o.format)
	if err != nil {
		return entity.Query{}, domain.NewUsageError("Invalid value for '-f' / '--format': %v", err)
	}
	start, err := parseDate(o.startDate, layouts)
	if err != nil {
		return entity.Query{}, domain.NewUsageError("Invalid value for '-s' / '--start-date': %v", err)
	}
	end, err := parseDate(o.endDate, layouts)
	if err != nil {
		return entity.Query{}, domain.NewUsageError("Invalid value for '-e' / '--end-date': %v", err)
	}
	if o.port < 0 || o.port > 65535 {
		return entity.Query{}, domain.NewUsageError("Invalid value for '-p' / '--port': %d", o.port)
	}
	return entity.Query{
		Code:   o.code,
		Output: o.output,
		Format: format,
		Start:  start,
		End:    end,
		Port:   o.port,
	}, nil
}

// parseDate は空文字ならnilを返し、それ以外はlayoutsの順に解釈を試みます。
func parseDate(s string, layouts []string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, usecase.MarketLocation); err == nil {
			return &t, nil
		}
	}
	return nil, &dateFormatError{value: s, layouts: layouts}
}

type dateFormatError struct {
	value   string
	layouts []string
}

func (e *dateFormatError) Error() string {
	return "'" + e.value + "' does not match the formats " + strings.Join(e.layouts, ", ")
}
