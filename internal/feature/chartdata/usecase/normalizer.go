package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
)

// TradeTimeLayout は체결시간 カラムの固定長フォーマット（YYYYMMDDhhmmss）です。
const TradeTimeLayout = "20060102150405"

var errMissingColumn = errors.New("column not found")

// MarketLocation は取引時刻を解釈するタイムゾーン（韓国標準時）です。
var MarketLocation = loadMarketLocation()

func loadMarketLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// NormalizeResult は正規化の結果です。
// Errが設定されている場合、Tableは失敗したカラムの直前までの変換が適用された状態です。
type NormalizeResult struct {
	Table *entity.Table
	Err   *domain.NormalizationError
}

// Normalize はテーブルのカラムを固定順序で型変換します。
//
//  1. 체결시간 を YYYYMMDDhhmmss としてパース
//  2. 현재가, 시가, 고가, 저가 を整数化して絶対値に変換
//
// 各カラムは全行の変換が成功した場合にのみ置き換えられます。
// 途中のカラムで失敗した場合はそこで処理を打ち切り、それ以前に変換済みのカラムはそのまま残ります。
func Normalize(t *entity.Table) NormalizeResult {
	if err := convertColumn(t, entity.ColTradeTime, toTradeTime); err != nil {
		return NormalizeResult{Table: t, Err: err}
	}
	for _, col := range entity.PriceColumns {
		if err := convertColumn(t, col, toAbsInt); err != nil {
			return NormalizeResult{Table: t, Err: err}
		}
	}
	return NormalizeResult{Table: t}
}

// convertColumn は1カラム分の値をすべて変換してから書き戻します。
func convertColumn(t *entity.Table, col string, conv func(any) (any, error)) *domain.NormalizationError {
	if t == nil {
		return &domain.NormalizationError{Column: col, Err: errMissingColumn}
	}
	idx := t.ColumnIndex(col)
	if idx < 0 {
		return &domain.NormalizationError{Column: col, Err: errMissingColumn}
	}

	converted := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) {
			return &domain.NormalizationError{Column: col, Err: fmt.Errorf("row %d: missing cell", i)}
		}
		v, err := conv(row[idx])
		if err != nil {
			return &domain.NormalizationError{Column: col, Err: fmt.Errorf("row %d: %w", i, err)}
		}
		converted[i] = v
	}
	for i, row := range t.Rows {
		row[idx] = converted[i]
	}
	return nil
}

// toTradeTime は文字列・数値・time.Time を取引時刻に変換します。
func toTradeTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return parseTradeTime(x)
	case json.Number:
		return parseTradeTime(x.String())
	case int64:
		return parseTradeTime(strconv.FormatInt(x, 10))
	case int:
		return parseTradeTime(strconv.Itoa(x))
	case float64:
		if x != math.Trunc(x) {
			return nil, fmt.Errorf("parse time %v: not an integer", x)
		}
		return parseTradeTime(strconv.FormatFloat(x, 'f', 0, 64))
	default:
		return nil, fmt.Errorf("parse time: unsupported value %v (%T)", v, v)
	}
}

func parseTradeTime(s string) (time.Time, error) {
	tm, err := time.ParseInLocation(TradeTimeLayout, strings.TrimSpace(s), MarketLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return tm, nil
}

// toAbsInt は符号付きの価格を非負の整数に変換します。
// ゲートウェイは値動きの方向を符号で表すため、絶対値を取ります。
func toAbsInt(v any) (any, error) {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case float64:
		p, err := floatToInt64(x)
		if err != nil {
			return nil, err
		}
		n = p
	case json.Number:
		p, err := parsePrice(x.String())
		if err != nil {
			return nil, err
		}
		n = p
	case string:
		p, err := parsePrice(x)
		if err != nil {
			return nil, err
		}
		n = p
	default:
		return nil, fmt.Errorf("parse price: unsupported value %v (%T)", v, v)
	}
	if n == math.MinInt64 {
		return nil, fmt.Errorf("parse price %d: out of range", n)
	}
	if n < 0 {
		n = -n
	}
	return n, nil
}

// parsePrice は "-71000"、"+71000"、" 71000 "、"71000.0" を受け付けます。
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse price %q: not an integer", s)
	}
	return floatToInt64(f)
}

// floatToInt64 は int64 に収まらない値（NaN・無限大を含む）をエラーにします。
func floatToInt64(f float64) (int64, error) {
	// -2^63 <= f < 2^63
	if math.IsNaN(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, fmt.Errorf("parse price %v: out of range", f)
	}
	return int64(f), nil
}
