package dashboard

import (
	"math"

	"tamias/models"
)

// Stats is the sales summary shown on the home screen. All of it is
// presentation-layer aggregation; nothing here feeds back into checkout.
type Stats struct {
	TodaySales        int64 `json:"todaySales"`
	SalesChange       int   `json:"salesChange"` // percent vs yesterday
	TodayTransactions int   `json:"todayTransactions"`
	TodayItemsSold    int   `json:"todayItemsSold"`
	TotalCustomers    int64 `json:"totalCustomers"`
}

// ComputeStats reduces today's and yesterday's transactions into the
// dashboard figures. SalesChange is a whole percent; it reads 0 when
// there were no sales yesterday to compare against.
func ComputeStats(todayTx, yesterdayTx []models.Transaction, customerCount int64) Stats {
	var stats Stats
	stats.TotalCustomers = customerCount
	stats.TodayTransactions = len(todayTx)

	for _, tx := range todayTx {
		stats.TodaySales += tx.Total
		for _, item := range tx.Items {
			stats.TodayItemsSold += item.Quantity
		}
	}

	var yesterdaySales int64
	for _, tx := range yesterdayTx {
		yesterdaySales += tx.Total
	}

	if yesterdaySales > 0 {
		change := float64(stats.TodaySales-yesterdaySales) / float64(yesterdaySales) * 100
		stats.SalesChange = int(math.Round(change))
	}

	return stats
}
