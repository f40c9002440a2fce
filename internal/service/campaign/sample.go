package campaign

import (
	"time"

	"github.com/ignite/discount-generator/internal/domain"
)

// SampleFilename labels sessions created from the built-in sample.
const SampleFilename = "sample-data"

// SampleTable returns three synthetic customers dated relative to now: a
// recent regular, a lapsed occasional buyer and a recent frequent VIP.
func SampleTable(now time.Time) domain.Table {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return domain.Table{
		Fields: []domain.Field{
			domain.FieldCustomerName, domain.FieldPhone, domain.FieldTotalOrders,
			domain.FieldTotalSpent, domain.FieldLastOrderDate,
		},
		Records: []domain.CustomerRecord{
			{CustomerName: "Test Customer 1", Phone: "1234567890", TotalOrders: 5, TotalSpent: 1500, LastOrderDate: day.AddDate(0, 0, -10)},
			{CustomerName: "Test Customer 2", Phone: "2345678901", TotalOrders: 2, TotalSpent: 500, LastOrderDate: day.AddDate(0, 0, -60)},
			{CustomerName: "Test Customer 3", Phone: "3456789012", TotalOrders: 10, TotalSpent: 3000, LastOrderDate: day.AddDate(0, 0, -2)},
		},
	}
}
