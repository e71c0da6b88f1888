// Copyright 2026 The Forge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package value

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Epoch is the spreadsheet serial-date epoch, 1899-12-30 (§3).
var Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ToNumber implements the §3 coercion table for any numeric context:
// Boolean TRUE=1/FALSE=0, Date -> its serial, numeric text -> number (via
// cast, which also accepts "1e3"-style text spf13/cast already handles),
// ISO date text -> its serial, Error short-circuits.
func ToNumber(v Value) (float64, ErrorKind, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, "", true
	case KindBoolean:
		if v.bl {
			return 1, "", true
		}
		return 0, "", true
	case KindDate:
		return float64(v.date), "", true
	case KindEmpty:
		return 0, "", true
	case KindError:
		return 0, v.ekind, false
	case KindText:
		if f, err := cast.ToFloat64E(strings.TrimSpace(v.text)); err == nil {
			return f, "", true
		}
		if serial, ok := parseISODate(v.text); ok {
			return float64(serial), "", true
		}
		return 0, Value_, false
	case KindDistribution:
		// A distribution handle used in ordinary arithmetic (outside a
		// Monte Carlo driver's pre-scan substitution) is a domain error,
		// not a type error (§9 "MC.* handles as values").
		return 0, Num, false
	default:
		return 0, Value_, false
	}
}

// ToText implements the §4.2 concatenation coercion: numbers render with
// the shortest decimal text that round-trips the float64, in plain
// (non-exponent) notation (via shopspring/decimal),
// booleans as TRUE/FALSE, dates DO NOT auto-convert to ISO text here
// (§3 "Date -> Number... dates as their ISO string on explicit coercion
// only") — callers that need the ISO string must call DateToISO.
func ToText(v Value) (string, ErrorKind, bool) {
	switch v.kind {
	case KindText:
		return v.text, "", true
	case KindNumber:
		return decimal.NewFromFloat(v.num).String(), "", true
	case KindBoolean:
		if v.bl {
			return "TRUE", "", true
		}
		return "FALSE", "", true
	case KindEmpty:
		return "", "", true
	case KindDate:
		return strconv.FormatInt(v.date, 10), "", true
	case KindError:
		return "", v.ekind, false
	default:
		return "", Value_, false
	}
}

// ToBoolean implements the §4.2 AND/OR/NOT/XOR coercion.
func ToBoolean(v Value) (bool, ErrorKind, bool) {
	switch v.kind {
	case KindBoolean:
		return v.bl, "", true
	case KindNumber:
		return v.num != 0, "", true
	case KindEmpty:
		return false, "", true
	case KindText:
		switch strings.ToUpper(strings.TrimSpace(v.text)) {
		case "TRUE":
			return true, "", true
		case "FALSE":
			return false, "", true
		}
		return false, Value_, false
	case KindError:
		return false, v.ekind, false
	default:
		return false, Value_, false
	}
}

// ToDate coerces a Value to a date serial. Only used where a function's
// contract demands it (§3); ordinary arithmetic uses ToNumber.
func ToDate(v Value) (int64, ErrorKind, bool) {
	switch v.kind {
	case KindDate:
		return v.date, "", true
	case KindNumber:
		return int64(v.num), "", true
	case KindText:
		if serial, ok := parseISODate(v.text); ok {
			return serial, "", true
		}
		return 0, Value_, false
	case KindError:
		return 0, v.ekind, false
	default:
		return 0, Value_, false
	}
}

// parseISODate coerces a YYYY-MM-DD string to its spreadsheet serial
// (§3 "the fix for date arithmetic").
func parseISODate(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, false
	}
	return DaysSinceEpoch(t), true
}

// DaysSinceEpoch converts a calendar date to its spreadsheet serial.
func DaysSinceEpoch(t time.Time) int64 {
	d := t.Sub(Epoch)
	return int64(d.Hours() / 24)
}

// SerialToTime converts a spreadsheet serial back to a calendar date.
func SerialToTime(serial int64) time.Time {
	return Epoch.AddDate(0, 0, int(serial))
}

// DateToISO renders a date serial as its ISO-8601 calendar string, used
// only where a function/operator explicitly asks for textual conversion
// of a date (§3).
func DateToISO(serial int64) string {
	return SerialToTime(serial).Format("2006-01-02")
}

// TextEqualFold implements the §3/§8 case-insensitive text-comparison
// invariant ("ABC" = "abc" is TRUE).
func TextEqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
