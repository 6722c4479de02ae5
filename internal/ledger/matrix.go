package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// SummaryTotals - сводные показатели общества одним проходом по участникам.
type SummaryTotals struct {
	TotalMembers       int
	TotalShares        int64
	TotalContributions decimal.Decimal
	TotalBorrowings    decimal.Decimal
	TotalRepayments    decimal.Decimal
	TotalOutstanding   decimal.Decimal
}

func Summarize(members []domain.Member) SummaryTotals {
	totals := SummaryTotals{
		TotalMembers:       len(members),
		TotalContributions: decimal.Zero,
		TotalBorrowings:    decimal.Zero,
		TotalRepayments:    decimal.Zero,
		TotalOutstanding:   decimal.Zero,
	}
	for _, m := range members {
		totals.TotalShares += m.Shares
		totals.TotalContributions = totals.TotalContributions.Add(m.TotalContributions)
		totals.TotalBorrowings = totals.TotalBorrowings.Add(m.TotalBorrowings)
		totals.TotalRepayments = totals.TotalRepayments.Add(m.TotalRepayments)
		totals.TotalOutstanding = totals.TotalOutstanding.Add(m.OutstandingBalance)
	}
	return totals
}

// RangeRow - строка матрицы отчета: участник и значение на каждый период
// диапазона.
type RangeRow struct {
	MemberID   string
	MemberName string
	Cells      map[domain.Period]decimal.Decimal
}

// RangeMatrix - матрица отчета за включительный диапазон периодов одного года.
type RangeMatrix struct {
	Periods []domain.Period
	Rows    []RangeRow
}

func newRangeMatrix(members []domain.Member, periods []domain.Period) RangeMatrix {
	rows := make([]RangeRow, len(members))
	for i, m := range members {
		cells := make(map[domain.Period]decimal.Decimal, len(periods))
		for _, p := range periods {
			cells[p] = decimal.Zero
		}
		rows[i] = RangeRow{MemberID: m.ID, MemberName: m.Name, Cells: cells}
	}
	return RangeMatrix{Periods: periods, Rows: rows}
}

func (m RangeMatrix) rowIndex() map[string]int {
	idx := make(map[string]int, len(m.Rows))
	for i, row := range m.Rows {
		idx[row.MemberID] = i
	}
	return idx
}

// BorrowingsMatrix суммирует займы каждого участника по периодам диапазона
// [from, to] за год. Ключ периода выводится из календарной даты займа.
func BorrowingsMatrix(
	members []domain.Member, borrowings []domain.Borrowing, from, to domain.Period, year int,
) RangeMatrix {
	matrix := newRangeMatrix(members, domain.PeriodRange(from, to))
	idx := matrix.rowIndex()
	for _, b := range borrowings {
		date := b.Date
		if date.IsZero() {
			date = b.Timestamp
		}
		if date.Year() != year {
			continue
		}
		addCell(matrix, idx, b.MemberID, domain.PeriodFromDate(date), b.Amount)
	}
	return matrix
}

// RepaymentsMatrix - то же, что BorrowingsMatrix, для погашений.
func RepaymentsMatrix(
	members []domain.Member, repayments []domain.Repayment, from, to domain.Period, year int,
) RangeMatrix {
	matrix := newRangeMatrix(members, domain.PeriodRange(from, to))
	idx := matrix.rowIndex()
	for _, r := range repayments {
		date := r.Date
		if date.IsZero() {
			date = r.Timestamp
		}
		if date.Year() != year {
			continue
		}
		addCell(matrix, idx, r.MemberID, domain.PeriodFromDate(date), r.Amount)
	}
	return matrix
}

// InterestMatrix суммирует начисленные проценты по периодам диапазона.
// В отличие от займов и погашений, здесь ключом служит период, записанный в
// самом начислении: у начисления нет календарной даты операции, период - его
// явный бизнес-ключ.
func InterestMatrix(
	members []domain.Member, accruals []domain.InterestAccrual, from, to domain.Period, year int,
) RangeMatrix {
	matrix := newRangeMatrix(members, domain.PeriodRange(from, to))
	idx := matrix.rowIndex()
	for _, a := range accruals {
		if a.Year != year {
			continue
		}
		addCell(matrix, idx, a.MemberID, a.Period, a.InterestAmount)
	}
	return matrix
}

func addCell(matrix RangeMatrix, idx map[string]int, memberID string, period domain.Period, amount decimal.Decimal) {
	i, ok := idx[memberID]
	if !ok {
		// запись ссылается на неизвестного участника, пропускаем.
		return
	}
	cell, ok := matrix.Rows[i].Cells[period]
	if !ok {
		// период вне запрошенного диапазона.
		return
	}
	matrix.Rows[i].Cells[period] = cell.Add(amount)
}

// TotalsRowName - имя итоговой строки матрицы распределения взносов.
const TotalsRowName = "TOTALS"

// AllocationRow - строка матрицы распределения: участник-вноситель и суммы по
// получателям.
type AllocationRow struct {
	Name  string
	Cells map[string]decimal.Decimal
}

// AllocationMatrix - матрица распределения взносов одного периода. Колонки:
// "Bank" плюс имена всех участников (по алфавиту). Последняя строка - TOTALS.
type AllocationMatrix struct {
	Period  domain.Period
	Year    int
	Columns []string
	Rows    []AllocationRow
}

// BuildAllocationMatrix строит матрицу распределения взносов за один период.
// Взнос, назначенный имени, не являющемуся ни "Bank", ни именем участника,
// складывается в колонку "Bank". Строки создаются только для участников,
// вносивших в этом периоде.
func BuildAllocationMatrix(
	members []domain.Member, contributions []domain.Contribution, period domain.Period, year int,
) AllocationMatrix {
	names := make([]string, len(members))
	memberByID := make(map[string]string, len(members))
	knownNames := make(map[string]struct{}, len(members))
	for i, m := range members {
		names[i] = m.Name
		memberByID[m.ID] = m.Name
		knownNames[m.Name] = struct{}{}
	}
	sort.Strings(names)

	columns := append([]string{domain.BankAssignee}, names...)

	newCells := func() map[string]decimal.Decimal {
		cells := make(map[string]decimal.Decimal, len(columns))
		for _, col := range columns {
			cells[col] = decimal.Zero
		}
		return cells
	}

	totals := newCells()
	rowByName := make(map[string]int)
	var rows []AllocationRow

	for _, c := range contributions {
		if c.Period != period || c.Year != year {
			continue
		}
		contributor, ok := memberByID[c.MemberID]
		if !ok {
			continue
		}

		target := c.AssignedTo
		if _, known := knownNames[target]; !known {
			target = domain.BankAssignee
		}

		i, ok := rowByName[contributor]
		if !ok {
			i = len(rows)
			rowByName[contributor] = i
			rows = append(rows, AllocationRow{Name: contributor, Cells: newCells()})
		}
		rows[i].Cells[target] = rows[i].Cells[target].Add(c.Amount)
		totals[target] = totals[target].Add(c.Amount)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	rows = append(rows, AllocationRow{Name: TotalsRowName, Cells: totals})

	return AllocationMatrix{Period: period, Year: year, Columns: columns, Rows: rows}
}
