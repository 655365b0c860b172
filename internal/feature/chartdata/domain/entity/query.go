// Package entity defines the domain models for the chartdata feature.
package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Granularity identifies which chart pipeline a query belongs to.
type Granularity string

const (
	Daily  Granularity = "daily"
	Minute Granularity = "minute"
)

// Format is the encoding of the exported file.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLS     Format = "xls"
	FormatSQLite3 Format = "sqlite3"
)

// Formats lists the accepted output formats in help-text order.
var Formats = []Format{FormatCSV, FormatXLS, FormatSQLite3}

// ParseFormat parses s case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q (choose from csv, xls, sqlite3)", s)
}

// Interval is the width of a minute bar. The zero value means "not set".
type Interval int

// Intervals lists the bar widths the gateway accepts.
var Intervals = []Interval{1, 3, 5, 10, 15, 30, 45, 60}

// ParseInterval parses one of the accepted minute intervals.
func ParseInterval(s string) (Interval, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err == nil {
		for _, iv := range Intervals {
			if Interval(n) == iv {
				return iv, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid interval %q (choose from %s)", s, IntervalChoices())
}

// IntervalChoices renders Intervals as "1|3|5|...".
func IntervalChoices() string {
	parts := make([]string, 0, len(Intervals))
	for _, iv := range Intervals {
		parts = append(parts, strconv.Itoa(int(iv)))
	}
	return strings.Join(parts, "|")
}

// IsSet reports whether an interval was supplied.
func (i Interval) IsSet() bool { return i != 0 }

// Query is one invocation's request. It is built once from CLI input and
// never mutated afterwards; empty strings and nil times mean "absent".
type Query struct {
	Code     string     // Instrument code (e.g. "005930")
	Interval Interval   // Minute bar width, minute pipeline only
	Start    *time.Time // Most recent boundary
	End      *time.Time // Oldest boundary, exclusive
	Output   string     // Destination path
	Format   Format     // Output encoding
	Port     int        // Gateway port override, 0 for the configured default
}

// Target describes where and how a table is written.
type Target struct {
	Path   string
	Format Format
	Code   string
}

// TableName is the sqlite3 table name for the target's code. Plain numeric
// codes are not valid identifiers, hence the "A" prefix.
func (t Target) TableName() string {
	return "A" + t.Code
}
