package ticker

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quantview/tickersheet/pkg/jsontree"
)

// splitTimeSeries walks a time-series store and partitions each metric's
// observations into trailing-twelve-month and annual rows.
//
// A whole metric is classified by the periodType of its final observation:
// the upstream emits homogeneous lists per key, so this mirrors observed
// behavior rather than splitting per observation. A metric whose list is
// empty, contains a null entry, or ends with an unknown period type is
// dropped without error; absence becomes an empty table downstream.
func splitTimeSeries(store *jsontree.Value) (ttm, annual []MetricRow) {
	series := store.Get("timeSeries")
	if series.Kind() != jsontree.Object {
		return nil, nil
	}

	keys := make([]string, 0, series.Len())
	for key := range series.Obj() {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		observations := series.Get(key).Arr()
		if len(observations) == 0 {
			continue
		}

		row := MetricRow{Key: key, Values: make(map[string]decimal.Decimal)}
		ok := true
		for _, obs := range observations {
			date, dateOK := obs.Get("asOfDate").Str()
			value, valueOK := obs.Get("reportedValue").Decimal()
			if !dateOK || !valueOK {
				ok = false
				break
			}
			row.Values[date] = value
		}
		if !ok {
			continue
		}

		last := observations[len(observations)-1]
		switch last.Get("periodType").StringOr("") {
		case "TTM":
			ttm = append(ttm, row)
		case "12M":
			annual = append(annual, row)
		}
	}
	return ttm, annual
}
