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

package registry

// Default is the process-wide catalog of built-in functions, populated
// once at package init (§5 "read-only process state, initialized once").
var Default = NewCatalog()

func init() {
	for _, d := range builtinDescriptors {
		Default.MustRegister(d)
	}
}

const unbounded = -1

// builtinDescriptors is the ~170-entry static table backing the Function
// Registry (§4.1). Implementations live in package eval; this table is
// purely discovery/arity metadata, matching the teacher's separation of
// sql.FunctionRegistry (catalog of descriptors) from
// sql/expression/function (implementations).
var builtinDescriptors = []Descriptor{
	// Math (§4.1 category "math")
	{Name: "SUM", Category: CategoryMath, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "SUMIF", Category: CategoryMath, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "SUMIFS", Category: CategoryMath, MinArity: 3, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "SUMPRODUCT", Category: CategoryMath, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "ABS", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "SQRT", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "POWER", Category: CategoryMath, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "EXP", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "LN", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "LOG", Category: CategoryMath, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "LOG10", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "MOD", Category: CategoryMath, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "ROUND", Category: CategoryMath, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "ROUNDUP", Category: CategoryMath, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "ROUNDDOWN", Category: CategoryMath, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "CEILING", Category: CategoryMath, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "FLOOR", Category: CategoryMath, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "INT", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "TRUNC", Category: CategoryMath, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "SIGN", Category: CategoryMath, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "GCD", Category: CategoryMath, MinArity: 1, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "LCM", Category: CategoryMath, MinArity: 1, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "PI", Category: CategoryMath, MinArity: 0, MaxArity: 0, ScalarCompatible: true},

	// Trig
	{Name: "SIN", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "COS", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "TAN", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ASIN", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ACOS", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ATAN", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ATAN2", Category: CategoryTrig, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "SINH", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "COSH", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "TANH", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "DEGREES", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "RADIANS", Category: CategoryTrig, MinArity: 1, MaxArity: 1, ScalarCompatible: true},

	// Aggregation
	{Name: "AVERAGE", Category: CategoryAggregation, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "AVERAGEIF", Category: CategoryAggregation, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "AVERAGEIFS", Category: CategoryAggregation, MinArity: 3, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "COUNT", Category: CategoryAggregation, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "COUNTA", Category: CategoryAggregation, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "COUNTBLANK", Category: CategoryAggregation, MinArity: 1, MaxArity: 1, ScalarCompatible: false},
	{Name: "COUNTIF", Category: CategoryAggregation, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "COUNTIFS", Category: CategoryAggregation, MinArity: 2, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "MIN", Category: CategoryAggregation, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "MAX", Category: CategoryAggregation, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "MINIFS", Category: CategoryAggregation, MinArity: 3, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "MAXIFS", Category: CategoryAggregation, MinArity: 3, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "MEDIAN", Category: CategoryAggregation, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "MODE", Category: CategoryAggregation, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "PRODUCT", Category: CategoryAggregation, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "SUBTOTAL", Category: CategoryAggregation, MinArity: 2, MaxArity: unbounded, ScalarCompatible: false},

	// Logical
	{Name: "AND", Category: CategoryLogical, MinArity: 0, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "OR", Category: CategoryLogical, MinArity: 0, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "NOT", Category: CategoryLogical, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "XOR", Category: CategoryLogical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "TRUE", Category: CategoryLogical, MinArity: 0, MaxArity: 0, ScalarCompatible: true},
	{Name: "FALSE", Category: CategoryLogical, MinArity: 0, MaxArity: 0, ScalarCompatible: true},

	// Text
	{Name: "LEN", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "LEFT", Category: CategoryText, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "RIGHT", Category: CategoryText, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "MID", Category: CategoryText, MinArity: 3, MaxArity: 3, ScalarCompatible: true},
	{Name: "UPPER", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "LOWER", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "PROPER", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "TRIM", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "CONCAT", Category: CategoryText, MinArity: 0, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "CONCATENATE", Category: CategoryText, MinArity: 0, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "SUBSTITUTE", Category: CategoryText, MinArity: 3, MaxArity: 4, ScalarCompatible: true},
	{Name: "REPLACE", Category: CategoryText, MinArity: 4, MaxArity: 4, ScalarCompatible: true},
	{Name: "FIND", Category: CategoryText, MinArity: 2, MaxArity: 3, ScalarCompatible: true},
	{Name: "SEARCH", Category: CategoryText, MinArity: 2, MaxArity: 3, ScalarCompatible: true},
	{Name: "VALUE", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "TEXT", Category: CategoryText, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "REPT", Category: CategoryText, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "CHAR", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "CODE", Category: CategoryText, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "EXACT", Category: CategoryText, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "SPLIT", Category: CategoryText, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "JOIN", Category: CategoryText, MinArity: 2, MaxArity: unbounded, ScalarCompatible: false},

	// Date
	{Name: "DATE", Category: CategoryDate, MinArity: 3, MaxArity: 3, ScalarCompatible: true},
	{Name: "DATEDIF", Category: CategoryDate, MinArity: 3, MaxArity: 3, ScalarCompatible: true},
	{Name: "DATEVALUE", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "EDATE", Category: CategoryDate, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "EOMONTH", Category: CategoryDate, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "NETWORKDAYS", Category: CategoryDate, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "WORKDAY", Category: CategoryDate, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "YEARFRAC", Category: CategoryDate, MinArity: 2, MaxArity: 3, ScalarCompatible: true},
	{Name: "TODAY", Category: CategoryDate, MinArity: 0, MaxArity: 0, ScalarCompatible: true},
	{Name: "NOW", Category: CategoryDate, MinArity: 0, MaxArity: 0, ScalarCompatible: true},
	{Name: "YEAR", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "MONTH", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "DAY", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "HOUR", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "MINUTE", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "SECOND", Category: CategoryDate, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "WEEKDAY", Category: CategoryDate, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "WEEKNUM", Category: CategoryDate, MinArity: 1, MaxArity: 2, ScalarCompatible: true},
	{Name: "DAYS", Category: CategoryDate, MinArity: 2, MaxArity: 2, ScalarCompatible: true},

	// Lookup
	{Name: "VLOOKUP", Category: CategoryLookup, MinArity: 3, MaxArity: 4, ScalarCompatible: false},
	{Name: "HLOOKUP", Category: CategoryLookup, MinArity: 3, MaxArity: 4, ScalarCompatible: false},
	{Name: "INDEX", Category: CategoryLookup, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "MATCH", Category: CategoryLookup, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "XLOOKUP", Category: CategoryLookup, MinArity: 3, MaxArity: 6, ScalarCompatible: false},
	{Name: "OFFSET", Category: CategoryLookup, MinArity: 3, MaxArity: 5, ScalarCompatible: false},
	{Name: "CHOOSE", Category: CategoryLookup, MinArity: 2, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "INDIRECT", Category: CategoryLookup, MinArity: 1, MaxArity: 2, ScalarCompatible: false},

	// Financial
	{Name: "NPV", Category: CategoryFinancial, MinArity: 2, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "IRR", Category: CategoryFinancial, MinArity: 1, MaxArity: 2, ScalarCompatible: false},
	{Name: "XNPV", Category: CategoryFinancial, MinArity: 3, MaxArity: 3, ScalarCompatible: false},
	{Name: "XIRR", Category: CategoryFinancial, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "MIRR", Category: CategoryFinancial, MinArity: 3, MaxArity: 3, ScalarCompatible: false},
	{Name: "PMT", Category: CategoryFinancial, MinArity: 3, MaxArity: 5, ScalarCompatible: true},
	{Name: "PV", Category: CategoryFinancial, MinArity: 3, MaxArity: 5, ScalarCompatible: true},
	{Name: "FV", Category: CategoryFinancial, MinArity: 3, MaxArity: 5, ScalarCompatible: true},
	{Name: "RATE", Category: CategoryFinancial, MinArity: 3, MaxArity: 6, ScalarCompatible: true},
	{Name: "NPER", Category: CategoryFinancial, MinArity: 3, MaxArity: 5, ScalarCompatible: true},
	{Name: "IPMT", Category: CategoryFinancial, MinArity: 4, MaxArity: 6, ScalarCompatible: true},
	{Name: "PPMT", Category: CategoryFinancial, MinArity: 4, MaxArity: 6, ScalarCompatible: true},
	{Name: "CUMIPMT", Category: CategoryFinancial, MinArity: 6, MaxArity: 6, ScalarCompatible: true},
	{Name: "CUMPRINC", Category: CategoryFinancial, MinArity: 6, MaxArity: 6, ScalarCompatible: true},
	{Name: "SLN", Category: CategoryFinancial, MinArity: 3, MaxArity: 3, ScalarCompatible: true},
	{Name: "DB", Category: CategoryFinancial, MinArity: 4, MaxArity: 5, ScalarCompatible: true},
	{Name: "DDB", Category: CategoryFinancial, MinArity: 4, MaxArity: 5, ScalarCompatible: true},
	{Name: "SYD", Category: CategoryFinancial, MinArity: 4, MaxArity: 4, ScalarCompatible: true},

	// Statistical
	{Name: "STDEV", Category: CategoryStatistical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "STDEVP", Category: CategoryStatistical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "VAR", Category: CategoryStatistical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "VARP", Category: CategoryStatistical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "CORREL", Category: CategoryStatistical, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "COVAR", Category: CategoryStatistical, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "PERCENTILE", Category: CategoryStatistical, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "QUARTILE", Category: CategoryStatistical, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "RANK", Category: CategoryStatistical, MinArity: 2, MaxArity: 3, ScalarCompatible: false},
	{Name: "NORMDIST", Category: CategoryStatistical, MinArity: 4, MaxArity: 4, ScalarCompatible: true},
	{Name: "NORMINV", Category: CategoryStatistical, MinArity: 3, MaxArity: 3, ScalarCompatible: true},
	{Name: "NORMSDIST", Category: CategoryStatistical, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "NORMSINV", Category: CategoryStatistical, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "TREND", Category: CategoryStatistical, MinArity: 1, MaxArity: 3, ScalarCompatible: false},
	{Name: "FORECAST", Category: CategoryStatistical, MinArity: 3, MaxArity: 3, ScalarCompatible: false},
	{Name: "SKEW", Category: CategoryStatistical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},
	{Name: "KURT", Category: CategoryStatistical, MinArity: 1, MaxArity: unbounded, ScalarCompatible: false},

	// Conditional
	{Name: "IF", Category: CategoryConditional, MinArity: 2, MaxArity: 3, ScalarCompatible: true},
	{Name: "IFERROR", Category: CategoryConditional, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "IFNA", Category: CategoryConditional, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "IFS", Category: CategoryConditional, MinArity: 2, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "SWITCH", Category: CategoryConditional, MinArity: 3, MaxArity: unbounded, ScalarCompatible: true},

	// Array
	{Name: "UNIQUE", Category: CategoryArray, MinArity: 1, MaxArity: 1, ScalarCompatible: false},
	{Name: "SORT", Category: CategoryArray, MinArity: 1, MaxArity: 2, ScalarCompatible: false},
	{Name: "FILTER", Category: CategoryArray, MinArity: 2, MaxArity: 2, ScalarCompatible: false},
	{Name: "SEQUENCE", Category: CategoryArray, MinArity: 1, MaxArity: 4, ScalarCompatible: false},
	{Name: "TRANSPOSE", Category: CategoryArray, MinArity: 1, MaxArity: 1, ScalarCompatible: false},
	{Name: "FREQUENCY", Category: CategoryArray, MinArity: 2, MaxArity: 2, ScalarCompatible: false},

	// Information
	{Name: "ISERROR", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISNA", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISBLANK", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISNUMBER", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISTEXT", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISLOGICAL", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISEVEN", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "ISODD", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "NA", Category: CategoryInformation, MinArity: 0, MaxArity: 0, ScalarCompatible: true},
	{Name: "TYPE", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},
	{Name: "N", Category: CategoryInformation, MinArity: 1, MaxArity: 1, ScalarCompatible: true},

	// Forge-native (§4.2 "forge-native")
	{Name: "VARIANCE", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "VARIANCE_PCT", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "VARIANCE_STATUS", Category: CategoryForgeNative, MinArity: 2, MaxArity: 3, ScalarCompatible: true},
	{Name: "BREAKEVEN_UNITS", Category: CategoryForgeNative, MinArity: 3, MaxArity: 3, ScalarCompatible: true},
	{Name: "BREAKEVEN_REVENUE", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "SCENARIO", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true},
	{Name: "MC.Normal", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true, IsAnalytical: true},
	{Name: "MC.Uniform", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true, IsAnalytical: true},
	{Name: "MC.Triangular", Category: CategoryForgeNative, MinArity: 3, MaxArity: 3, ScalarCompatible: true, IsAnalytical: true},
	{Name: "MC.PERT", Category: CategoryForgeNative, MinArity: 3, MaxArity: 4, ScalarCompatible: true, IsAnalytical: true},
	{Name: "MC.LogNormal", Category: CategoryForgeNative, MinArity: 2, MaxArity: 2, ScalarCompatible: true, IsAnalytical: true},

	// Advanced (§4.2, §9 — parsed into dedicated AST nodes, registered
	// here only for registry.list()/describe() discovery, §6)
	{Name: "LET", Category: CategoryAdvanced, MinArity: 1, MaxArity: unbounded, ScalarCompatible: true},
	{Name: "LAMBDA", Category: CategoryAdvanced, MinArity: 1, MaxArity: unbounded, ScalarCompatible: true},
}
