package entity

// Column names used by the gateway's stock chart responses.
const (
	ColTradeTime = "체결시간" // trade time, YYYYMMDDhhmmss
	ColCurrent   = "현재가"  // current (close) price
	ColOpen      = "시가"   // opening price
	ColHigh      = "고가"   // highest price
	ColLow       = "저가"   // lowest price
)

// PriceColumns are normalised to absolute integers, in this order.
var PriceColumns = []string{ColCurrent, ColOpen, ColHigh, ColLow}

// Table is a column-ordered chart returned by one gateway query.
// Cells are loosely typed: string, json.Number, int64, float64, time.Time or nil.
// Row order is the order the gateway returned and is kept through to the sink.
type Table struct {
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of name, or -1 when the column is absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone returns a deep copy of the column list and row slices.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}
