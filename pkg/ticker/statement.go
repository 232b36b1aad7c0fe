package ticker

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// assembleStatement combines a flattened template with reconciled metric
// rows into one presentation-ordered table for a statement type.
//
// The template order is the statement's presentation order and is never
// re-sorted: slots with no matching metric become all-null rows first, and
// only rows that stay null across every column are dropped at the end.
// TTM columns get a "TTM " prefix so merged actual and trailing figures
// stay distinguishable.
func assembleStatement(tpl FlatTemplate, ttm, annual []MetricRow, includeTTM bool) Statement {
	annualByKey := indexMetricRows(annual)
	annualDates := metricDates(annual)

	var ttmByKey map[string]MetricRow
	var ttmDates []string
	if includeTTM {
		ttmByKey = indexMetricRows(ttm)
		ttmDates = metricDates(ttm)
	}

	columns := make([]string, 0, len(annualDates)+len(ttmDates))
	columns = append(columns, annualDates...)
	for _, date := range ttmDates {
		columns = append(columns, "TTM "+date)
	}

	out := Statement{Columns: columns}
	for i := 0; i < tpl.Len(); i++ {
		key := strings.TrimPrefix(tpl.AnnualKeys[i], "annual")

		values := make([]decimal.NullDecimal, 0, len(columns))
		empty := true
		if row, ok := annualByKey[tpl.AnnualKeys[i]]; ok {
			for _, date := range annualDates {
				values = appendCell(values, row.Values, date, &empty)
			}
		} else {
			values = append(values, make([]decimal.NullDecimal, len(annualDates))...)
		}
		if includeTTM {
			if row, ok := ttmByKey[tpl.TTMKeys[i]]; ok {
				for _, date := range ttmDates {
					values = appendCell(values, row.Values, date, &empty)
				}
			} else {
				values = append(values, make([]decimal.NullDecimal, len(ttmDates))...)
			}
		}

		if empty {
			continue
		}
		out.Rows = append(out.Rows, StatementRow{
			Label:  camelToTitle(key),
			Level:  tpl.Levels[i],
			Values: values,
		})
	}
	return out
}

func appendCell(values []decimal.NullDecimal, row map[string]decimal.Decimal, date string, empty *bool) []decimal.NullDecimal {
	if v, ok := row[date]; ok {
		*empty = false
		return append(values, decimal.NullDecimal{Decimal: v, Valid: true})
	}
	return append(values, decimal.NullDecimal{})
}

func indexMetricRows(rows []MetricRow) map[string]MetricRow {
	byKey := make(map[string]MetricRow, len(rows))
	for _, row := range rows {
		byKey[row.Key] = row
	}
	return byKey
}

// metricDates returns the union of observation dates across every metric in
// the table, ascending. Columns are table-wide: a metric without a given
// date simply has a null cell there.
func metricDates(rows []MetricRow) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, row := range rows {
		for date := range row.Values {
			if _, ok := seen[date]; !ok {
				seen[date] = struct{}{}
				dates = append(dates, date)
			}
		}
	}
	sort.Strings(dates)
	return dates
}
