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

package eval

import (
	"strings"
	"time"

	"github.com/mollendorff-ai/forge/value"
)

func init() {
	builtins["DATE"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, k, ok := argNumbers(args)
		if !ok || len(nums) != 3 {
			return errValue(k)
		}
		// time.Date normalizes out-of-range month/day fields exactly to
		// the §4.2 roll-over convention (Feb 30 -> Mar 2, month 13 -> next
		// January) without extra bookkeeping here.
		t := time.Date(int(nums[0]), time.Month(int(nums[1])), int(nums[2]), 0, 0, 0, 0, time.UTC)
		return value.Date(value.DaysSinceEpoch(t))
	}
	builtins["DATEVALUE"] = func(e *Evaluator, args []value.Value) value.Value {
		s, k, ok := one1Text(args)
		if !ok {
			return errValue(k)
		}
		d, k, ok := value.ToDate(value.Text(s))
		if !ok {
			return errValue(k)
		}
		return value.Date(d)
	}
	builtins["YEAR"] = dateComponent(func(t time.Time) float64 { return float64(t.Year()) })
	builtins["MONTH"] = dateComponent(func(t time.Time) float64 { return float64(t.Month()) })
	builtins["DAY"] = dateComponent(func(t time.Time) float64 { return float64(t.Day()) })
	builtins["HOUR"] = dateComponent(func(t time.Time) float64 { return float64(t.Hour()) })
	builtins["MINUTE"] = dateComponent(func(t time.Time) float64 { return float64(t.Minute()) })
	builtins["SECOND"] = dateComponent(func(t time.Time) float64 { return float64(t.Second()) })
	builtins["DAYS"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		end, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		start, k, ok := value.ToDate(args[1])
		if !ok {
			return errValue(k)
		}
		return value.Number(float64(end - start))
	}
	builtins["WEEKDAY"] = func(e *Evaluator, args []value.Value) value.Value {
		nums, serial, k, ok := dateAndNums(args, 1)
		if !ok {
			return errValue(k)
		}
		kind := 1
		if len(nums) == 1 {
			kind = int(nums[0])
		}
		t := value.SerialToTime(serial)
		wd := int(t.Weekday()) // Sunday=0
		switch kind {
		case 2:
			return value.Number(float64((wd+6)%7 + 1)) // Monday=1
		case 3:
			return value.Number(float64((wd + 6) % 7)) // Monday=0
		default:
			return value.Number(float64(wd + 1)) // Sunday=1
		}
	}
	builtins["WEEKNUM"] = func(e *Evaluator, args []value.Value) value.Value {
		_, serial, k, ok := dateAndNums(args, 1)
		if !ok {
			return errValue(k)
		}
		t := value.SerialToTime(serial)
		_, week := t.ISOWeek()
		return value.Number(float64(week))
	}
	builtins["EDATE"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		serial, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		months, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		t := value.SerialToTime(serial).AddDate(0, int(months), 0)
		return value.Date(value.DaysSinceEpoch(t))
	}
	builtins["EOMONTH"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 2 {
			return errValue(value.Value_)
		}
		serial, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		months, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		t := value.SerialToTime(serial)
		firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, int(months)+1, 0)
		lastDay := firstOfTarget.AddDate(0, 0, -1)
		return value.Date(value.DaysSinceEpoch(lastDay))
	}
	builtins["NETWORKDAYS"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		startS, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		endS, k, ok := value.ToDate(args[1])
		if !ok {
			return errValue(k)
		}
		holidays := holidaySet(args[2:])
		if endS < startS {
			startS, endS = endS, startS
		}
		count := 0
		for s := startS; s <= endS; s++ {
			t := value.SerialToTime(s)
			if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
				continue
			}
			if holidays[s] {
				continue
			}
			count++
		}
		return value.Number(float64(count))
	}
	builtins["WORKDAY"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		startS, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		days, k, ok := value.ToNumber(args[1])
		if !ok {
			return errValue(k)
		}
		holidays := holidaySet(args[2:])
		step := 1
		remaining := int(days)
		if remaining < 0 {
			step = -1
			remaining = -remaining
		}
		cur := startS
		for remaining > 0 {
			cur += int64(step)
			t := value.SerialToTime(cur)
			if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday || holidays[cur] {
				continue
			}
			remaining--
		}
		return value.Date(cur)
	}
	builtins["YEARFRAC"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) < 2 {
			return errValue(value.Value_)
		}
		startS, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		endS, k, ok := value.ToDate(args[1])
		if !ok {
			return errValue(k)
		}
		basis := 0
		if len(args) == 3 {
			n, k, ok := value.ToNumber(args[2])
			if !ok {
				return errValue(k)
			}
			basis = int(n)
		}
		if basis == 1 {
			return value.Number(float64(endS-startS) / 365.25)
		}
		if basis == 3 {
			return value.Number(float64(endS-startS) / 365)
		}
		// basis 0: NASD 30/360.
		st, en := value.SerialToTime(startS), value.SerialToTime(endS)
		d1, d2 := st.Day(), en.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		days360 := (en.Year()-st.Year())*360 + (int(en.Month())-int(st.Month()))*30 + (d2 - d1)
		return value.Number(float64(days360) / 360)
	}
	builtins["TODAY"] = func(e *Evaluator, args []value.Value) value.Value {
		return value.Date(value.DaysSinceEpoch(e.Now))
	}
	builtins["NOW"] = func(e *Evaluator, args []value.Value) value.Value {
		days := e.Now.Sub(value.Epoch).Hours() / 24
		return value.Number(days)
	}
	builtins["DATEDIF"] = func(e *Evaluator, args []value.Value) value.Value {
		if len(args) != 3 {
			return errValue(value.Value_)
		}
		startS, k, ok := value.ToDate(args[0])
		if !ok {
			return errValue(k)
		}
		endS, k, ok := value.ToDate(args[1])
		if !ok {
			return errValue(k)
		}
		unit, k, ok := value.ToText(args[2])
		if !ok {
			return errValue(k)
		}
		n, k, ok := dateDif(startS, endS, strings.ToUpper(unit))
		if !ok {
			return errValue(k)
		}
		return value.Number(n)
	}
}

func dateComponent(f func(time.Time) float64) builtinFunc {
	return func(e *Evaluator, args []value.Value) value.Value {
		serial, k, ok := value.ToDate(mustOne(args))
		if !ok {
			return errValue(k)
		}
		return value.Number(f(value.SerialToTime(serial)))
	}
}

func mustOne(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.Err(value.Value_)
	}
	return args[0]
}

func dateAndNums(args []value.Value, dateArgs int) ([]float64, int64, value.ErrorKind, bool) {
	if len(args) < 1 {
		return nil, 0, value.Value_, false
	}
	serial, k, ok := value.ToDate(args[0])
	if !ok {
		return nil, 0, k, false
	}
	rest, k, ok := argNumbers(args[1:])
	if !ok {
		return nil, 0, k, false
	}
	return rest, serial, "", true
}

func holidaySet(args []value.Value) map[int64]bool {
	out := map[int64]bool{}
	for _, a := range flattenAll(args) {
		if s, _, ok := value.ToDate(a); ok {
			out[s] = true
		}
	}
	return out
}

// dateDif implements DATEDIF's Y/M/D/YM/YD/MD units (§4.2).
func dateDif(startSerial, endSerial int64, unit string) (float64, value.ErrorKind, bool) {
	if endSerial < startSerial {
		return 0, value.Num, false
	}
	st := value.SerialToTime(startSerial)
	en := value.SerialToTime(endSerial)
	sy, sm, sd := st.Year(), int(st.Month()), st.Day()
	ey, em, ed := en.Year(), int(en.Month()), en.Day()

	years := ey - sy
	months := em - sm
	days := ed - sd
	if days < 0 {
		months--
		prevMonthEnd := time.Date(ey, time.Month(em), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		days += prevMonthEnd.Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	switch unit {
	case "Y":
		return float64(years), "", true
	case "M":
		return float64(years*12 + months), "", true
	case "D":
		return float64(endSerial - startSerial), "", true
	case "YM":
		return float64(months), "", true
	case "MD":
		return float64(days), "", true
	case "YD":
		anniversary := time.Date(ey, time.Month(sm), sd, 0, 0, 0, 0, time.UTC)
		if anniversary.After(en) {
			anniversary = time.Date(ey-1, time.Month(sm), sd, 0, 0, 0, 0, time.UTC)
		}
		return float64(value.DaysSinceEpoch(en) - value.DaysSinceEpoch(anniversary)), "", true
	default:
		return 0, value.Value_, false
	}
}
