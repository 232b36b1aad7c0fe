package ticker

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/quantview/tickersheet/pkg/jsontree"
)

// TrendPeriod is one period of the analyst recommendation trend.
type TrendPeriod struct {
	Period     string
	StrongBuy  int64
	Buy        int64
	Hold       int64
	Sell       int64
	StrongSell int64
}

// PriceTarget is the analyst price target summary.
type PriceTarget struct {
	Current          decimal.NullDecimal
	Low              decimal.NullDecimal
	Mean             decimal.NullDecimal
	High             decimal.NullDecimal
	NumberOfAnalysts int64
}

// EarningsEstimate is one forecast period of per-share earnings estimates.
type EarningsEstimate struct {
	Period           string
	EndDate          string
	Avg              decimal.NullDecimal
	Low              decimal.NullDecimal
	High             decimal.NullDecimal
	YearAgoEPS       decimal.NullDecimal
	NumberOfAnalysts int64
	Growth           decimal.NullDecimal
}

// RevenueEstimate is one forecast period of revenue estimates.
type RevenueEstimate struct {
	Period           string
	EndDate          string
	Avg              decimal.NullDecimal
	Low              decimal.NullDecimal
	High             decimal.NullDecimal
	YearAgoRevenue   decimal.NullDecimal
	NumberOfAnalysts int64
	Growth           decimal.NullDecimal
}

// fetchAnalysis fills the analyst sections from the analysis page stores.
// The estimate tables only exist when the recommendation trend does, so a
// missing trend degrades all four sections with the same reason.
func (t *Ticker) fetchAnalysis(url string, f *Fundamentals) {
	fail := func(err error) {
		f.AnalystTrend = section[[]TrendPeriod](nil, &FieldError{Field: "analyst trend", Err: err})
		f.PriceTarget = section(PriceTarget{}, &FieldError{Field: "price target", Err: err})
		f.EarningsEstimates = section[[]EarningsEstimate](nil, &FieldError{Field: "earnings estimates", Err: err})
		f.RevenueEstimates = section[[]RevenueEstimate](nil, &FieldError{Field: "revenue estimates", Err: err})
	}

	stores, err := t.client.fetchStores(url, nil)
	if err != nil {
		fail(err)
		return
	}
	store := stores.Get("QuoteSummaryStore")

	trend := store.Get("recommendationTrend", "trend").Arr()
	if len(trend) == 0 {
		fail(fmt.Errorf("recommendation trend missing"))
		return
	}

	periods := make([]TrendPeriod, 0, len(trend))
	for _, item := range trend {
		p := TrendPeriod{Period: item.Get("period").StringOr("")}
		p.StrongBuy, _ = item.Get("strongBuy").Int()
		p.Buy, _ = item.Get("buy").Int()
		p.Hold, _ = item.Get("hold").Int()
		p.Sell, _ = item.Get("sell").Int()
		p.StrongSell, _ = item.Get("strongSell").Int()
		periods = append(periods, p)
	}
	f.AnalystTrend = section(periods, nil)

	f.PriceTarget = parsePriceTarget(store.Get("financialData"))

	earningsEst, revenueEst := parseEstimates(store.Get("earningsTrend", "trend").Arr())
	f.EarningsEstimates = section(earningsEst, nil)
	f.RevenueEstimates = section(revenueEst, nil)
}

func parsePriceTarget(data *jsontree.Value) Section[PriceTarget] {
	if data.Kind() != jsontree.Object {
		return section(PriceTarget{}, &FieldError{
			Field: "price target",
			Err:   fmt.Errorf("financial data missing"),
		})
	}
	pt := PriceTarget{
		Current: data.Get("currentPrice").NullDecimal(),
		Low:     data.Get("targetLowPrice").NullDecimal(),
		Mean:    data.Get("targetMeanPrice").NullDecimal(),
		High:    data.Get("targetHighPrice").NullDecimal(),
	}
	pt.NumberOfAnalysts, _ = data.Get("numberOfAnalystOpinions").Int()
	return section(pt, nil)
}

func parseEstimates(trend []*jsontree.Value) ([]EarningsEstimate, []RevenueEstimate) {
	var earnings []EarningsEstimate
	var revenue []RevenueEstimate
	for _, item := range trend {
		period := item.Get("period").StringOr("")
		endDate := item.Get("endDate").StringOr("")

		if est := item.Get("earningsEstimate"); est.Kind() == jsontree.Object {
			e := EarningsEstimate{
				Period:     period,
				EndDate:    endDate,
				Avg:        est.Get("avg").NullDecimal(),
				Low:        est.Get("low").NullDecimal(),
				High:       est.Get("high").NullDecimal(),
				YearAgoEPS: est.Get("yearAgoEps").NullDecimal(),
				Growth:     est.Get("growth").NullDecimal(),
			}
			e.NumberOfAnalysts, _ = est.Get("numberOfAnalysts").Int()
			earnings = append(earnings, e)
		}
		if est := item.Get("revenueEstimate"); est.Kind() == jsontree.Object {
			r := RevenueEstimate{
				Period:         period,
				EndDate:        endDate,
				Avg:            est.Get("avg").NullDecimal(),
				Low:            est.Get("low").NullDecimal(),
				High:           est.Get("high").NullDecimal(),
				YearAgoRevenue: est.Get("yearAgoRevenue").NullDecimal(),
				Growth:         est.Get("growth").NullDecimal(),
			}
			r.NumberOfAnalysts, _ = est.Get("numberOfAnalysts").Int()
			revenue = append(revenue, r)
		}
	}
	return earnings, revenue
}
