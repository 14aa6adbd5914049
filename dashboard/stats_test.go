package dashboard

import (
	"testing"

	"tamias/models"
)

func tx(total int64, quantities ...int) models.Transaction {
	t := models.Transaction{Total: total}
	for _, q := range quantities {
		t.Items = append(t.Items, models.TransactionItem{Quantity: q})
	}
	return t
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name      string
		today     []models.Transaction
		yesterday []models.Transaction
		customers int64
		want      Stats
	}{
		{
			name:      "typical day",
			today:     []models.Transaction{tx(74800, 2, 1), tx(30000, 3)},
			yesterday: []models.Transaction{tx(52400, 1)},
			customers: 12,
			want: Stats{
				TodaySales:        104800,
				SalesChange:       100, // 104800 vs 52400
				TodayTransactions: 2,
				TodayItemsSold:    6,
				TotalCustomers:    12,
			},
		},
		{
			name:      "no sales yesterday reads zero change",
			today:     []models.Transaction{tx(10000, 1)},
			yesterday: nil,
			want: Stats{
				TodaySales:        10000,
				SalesChange:       0,
				TodayTransactions: 1,
				TodayItemsSold:    1,
			},
		},
		{
			name:      "sales dropped",
			today:     []models.Transaction{tx(25000, 1)},
			yesterday: []models.Transaction{tx(100000, 4)},
			want: Stats{
				TodaySales:        25000,
				SalesChange:       -75,
				TodayTransactions: 1,
				TodayItemsSold:    1,
			},
		},
		{
			name: "empty day",
			want: Stats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.today, tt.yesterday, tt.customers)
			if got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
