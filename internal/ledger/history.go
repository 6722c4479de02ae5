package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// Bucket - накопленная сумма и количество записей одного периода.
type Bucket struct {
	Amount decimal.Decimal
	Count  int
}

// History группирует записи по году и периоду: year -> period -> bucket.
type History map[int]map[domain.Period]Bucket

func (h History) add(year int, period domain.Period, amount decimal.Decimal) {
	periods, ok := h[year]
	if !ok {
		periods = make(map[domain.Period]Bucket)
		h[year] = periods
	}
	bucket := periods[period]
	bucket.Amount = bucket.Amount.Add(amount)
	bucket.Count++
	periods[period] = bucket
}

// BorrowingHistory строит сетку займов по периодам. Период выводится из
// календарной даты займа, поле Period записи игнорируется: займ - это
// движение денег в конкретный день.
func BorrowingHistory(items []domain.Borrowing) History {
	h := make(History)
	for _, b := range items {
		date := b.Date
		if date.IsZero() {
			date = b.Timestamp
		}
		h.add(date.Year(), domain.PeriodFromDate(date), b.Amount)
	}
	return h
}

// RepaymentHistory строит сетку погашений по периодам, по тому же правилу
// вывода периода из даты, что и BorrowingHistory.
func RepaymentHistory(items []domain.Repayment) History {
	h := make(History)
	for _, r := range items {
		date := r.Date
		if date.IsZero() {
			date = r.Timestamp
		}
		h.add(date.Year(), domain.PeriodFromDate(date), r.Amount)
	}
	return h
}
