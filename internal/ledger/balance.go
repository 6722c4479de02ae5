// Package ledger содержит чистые функции агрегации над журналом событий
// участника: остатки по займам, сетки по периодам и отчетные матрицы.
// Пакет не ходит в хранилище, все данные передаются срезами.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// OutstandingCapital возвращает невозвращенный основной долг:
// max(0, сумма займов - сумма погашений). Для участника без займов - ноль.
func OutstandingCapital(borrowings []domain.Borrowing, repayments []domain.Repayment) decimal.Decimal {
	borrowed := sumBorrowings(borrowings)
	repaid := sumRepayments(repayments)

	capital := borrowed.Sub(repaid)
	if capital.IsNegative() {
		return decimal.Zero
	}
	return capital
}

// OutstandingInterest возвращает непогашенные проценты. Погашения в первую
// очередь закрывают основной долг; излишек сверх долга уменьшает накопленные
// проценты. Порядок "сначала капитал" фиксирован и не настраивается.
func OutstandingInterest(
	borrowings []domain.Borrowing,
	repayments []domain.Repayment,
	accruals []domain.InterestAccrual,
) decimal.Decimal {
	borrowed := sumBorrowings(borrowings)
	repaid := sumRepayments(repayments)
	accrued := sumAccruals(accruals)

	surplus := repaid.Sub(borrowed)
	if surplus.IsNegative() {
		surplus = decimal.Zero
	}

	interest := accrued.Sub(surplus)
	if interest.IsNegative() {
		return decimal.Zero
	}
	return interest
}

// TotalOwing - полная задолженность участника: капитал плюс проценты.
func TotalOwing(
	borrowings []domain.Borrowing,
	repayments []domain.Repayment,
	accruals []domain.InterestAccrual,
) decimal.Decimal {
	return OutstandingCapital(borrowings, repayments).
		Add(OutstandingInterest(borrowings, repayments, accruals))
}

func sumBorrowings(items []domain.Borrowing) decimal.Decimal {
	total := decimal.Zero
	for _, b := range items {
		total = total.Add(b.Amount)
	}
	return total
}

func sumRepayments(items []domain.Repayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range items {
		total = total.Add(r.Amount)
	}
	return total
}

func sumAccruals(items []domain.InterestAccrual) decimal.Decimal {
	total := decimal.Zero
	for _, a := range items {
		total = total.Add(a.InterestAmount)
	}
	return total
}
