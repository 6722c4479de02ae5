package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period - символьная метка расчетного периода P1..P12. Номинально совпадает
// с календарным месяцем, но хранится отдельным полем.
type Period string

const (
	MinPeriodNum = 1
	MaxPeriodNum = 12
)

// ParsePeriod разбирает строку вида "P3". Возвращает ValidationError для
// любого значения вне P1..P12.
func ParsePeriod(s string) (Period, error) {
	rest, ok := strings.CutPrefix(s, "P")
	if !ok {
		return "", NewValidationError("period", fmt.Sprintf("invalid period %q", s))
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < MinPeriodNum || n > MaxPeriodNum {
		return "", NewValidationError("period", fmt.Sprintf("invalid period %q", s))
	}
	return PeriodFromNum(n), nil
}

func PeriodFromNum(n int) Period {
	return Period("P" + strconv.Itoa(n))
}

// PeriodFromDate выводит период из календарной даты: P1 для января и так далее.
func PeriodFromDate(t time.Time) Period {
	return PeriodFromNum(int(t.Month()))
}

// Num возвращает числовой суффикс периода или 0 для некорректного значения.
func (p Period) Num() int {
	rest, ok := strings.CutPrefix(string(p), "P")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < MinPeriodNum || n > MaxPeriodNum {
		return 0
	}
	return n
}

func (p Period) Valid() bool {
	return p.Num() != 0
}

// PeriodRange возвращает включительный диапазон периодов [from, to],
// упорядоченный по числовому суффиксу. Пустой срез, если from позже to
// или одна из границ некорректна.
func PeriodRange(from, to Period) []Period {
	start, end := from.Num(), to.Num()
	if start == 0 || end == 0 || start > end {
		return nil
	}
	periods := make([]Period, 0, end-start+1)
	for n := start; n <= end; n++ {
		periods = append(periods, PeriodFromNum(n))
	}
	return periods
}

// AllPeriods перечисляет P1..P12 по порядку.
func AllPeriods() []Period {
	return PeriodRange(PeriodFromNum(MinPeriodNum), PeriodFromNum(MaxPeriodNum))
}
