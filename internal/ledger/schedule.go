package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// ScheduleEntry - строка сетки взносов одного периода. ShortfallExcess равен
// nil, когда за период нет ни одного взноса: отсутствие данных и нулевое
// отклонение - разные вещи.
type ScheduleEntry struct {
	Period          domain.Period
	Expected        decimal.Decimal
	Contributed     decimal.Decimal
	HasContribution bool
	ShortfallExcess *decimal.Decimal
}

// ContributionSchedule строит сетку взносов участника за год по всем 12
// периодам. Ожидаемый взнос равен shares * 1000. Периоды берутся из самих
// записей взносов (у взноса период - явный бизнес-ключ, а не производная от
// даты).
func ContributionSchedule(shares int64, contributions []domain.Contribution, year int) []ScheduleEntry {
	expected := decimal.NewFromInt(shares * domain.SharePrice)

	byPeriod := make(map[domain.Period]Bucket)
	for _, c := range contributions {
		if c.Year != year {
			continue
		}
		bucket := byPeriod[c.Period]
		bucket.Amount = bucket.Amount.Add(c.Amount)
		bucket.Count++
		byPeriod[c.Period] = bucket
	}

	entries := make([]ScheduleEntry, 0, domain.MaxPeriodNum)
	for _, period := range domain.AllPeriods() {
		entry := ScheduleEntry{
			Period:      period,
			Expected:    expected,
			Contributed: decimal.Zero,
		}
		if bucket, ok := byPeriod[period]; ok {
			diff := bucket.Amount.Sub(expected)
			entry.Contributed = bucket.Amount
			entry.HasContribution = true
			entry.ShortfallExcess = &diff
		}
		entries = append(entries, entry)
	}
	return entries
}
