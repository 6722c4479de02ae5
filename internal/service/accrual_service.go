package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/logger"
)

var oneHundred = decimal.NewFromInt(100)

// AccrualService выполняет пакетное начисление процентов в конце периода.
type AccrualService struct {
	members  MemberRepository
	accruals InterestAccrualRepository
	l        *logrus.Entry
}

func NewAccrualService(members MemberRepository, accruals InterestAccrualRepository, l *logrus.Logger) *AccrualService {
	return &AccrualService{
		members:  members,
		accruals: accruals,
		l:        logger.WithComponent(l, "accrual"),
	}
}

// AccrualEntry - результат начисления по одному участнику.
type AccrualEntry struct {
	MemberID       string
	MemberName     string
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	InterestAmount decimal.Decimal
	NewBalance     decimal.Decimal
}

// PeriodEndResult - итог пакетного прогона: успешные начисления и ошибки по
// участникам.
type PeriodEndResult struct {
	Period    domain.Period
	Year      int
	Processed int
	Entries   []AccrualEntry
	Failures  []domain.BatchFailure
}

// BatchError возвращает накопленные ошибки прогона как *domain.BatchError
// или nil, если все участники обработаны.
func (r *PeriodEndResult) BatchError() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &domain.BatchError{Failures: r.Failures}
}

// RunPeriodEnd начисляет проценты всем участникам с положительным
// outstandingBalance: создает запись interest_calculation и увеличивает баланс
// на balance * monthlyRate / 100. Ставка передается явно - прогон использует
// значение на момент запуска, исторические ставки не поднимаются.
//
// Прогон НЕ идемпотентен: повторный запуск за тот же период начислит проценты
// на уже увеличенный баланс. Не запускать дважды за один период - это
// ответственность вызывающей стороны.
//
// Ошибка на одном участнике не прерывает обработку остальных: сбои копятся в
// PeriodEndResult.Failures.
func (s *AccrualService) RunPeriodEnd(
	ctx context.Context,
	period domain.Period,
	year int,
	monthlyRate decimal.Decimal,
) (*PeriodEndResult, error) {
	if !period.Valid() {
		return nil, domain.NewValidationError("period", "period must be one of P1..P12")
	}
	if monthlyRate.IsNegative() {
		return nil, domain.NewValidationError("monthlyRate", "rate must not be negative")
	}

	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	result := &PeriodEndResult{Period: period, Year: year}

	for _, member := range members {
		if !member.OutstandingBalance.IsPositive() {
			continue
		}

		entry, memberErr := s.accrueMember(ctx, member, period, year, monthlyRate)
		if memberErr != nil {
			s.l.WithError(memberErr).WithField("memberId", member.ID).Error("period-end accrual failed")
			result.Failures = append(result.Failures, domain.BatchFailure{
				MemberID:   member.ID,
				MemberName: member.Name,
				Err:        memberErr,
			})
			continue
		}

		result.Entries = append(result.Entries, *entry)
		result.Processed++
	}

	s.l.WithFields(logrus.Fields{
		"period":    period,
		"year":      year,
		"processed": result.Processed,
		"failed":    len(result.Failures),
	}).Info("period-end accrual finished")

	return result, nil
}

func (s *AccrualService) accrueMember(
	ctx context.Context,
	member domain.Member,
	period domain.Period,
	year int,
	monthlyRate decimal.Decimal,
) (*AccrualEntry, error) {
	principal := member.OutstandingBalance
	interest := principal.Mul(monthlyRate).Div(oneHundred)

	created, err := s.accruals.Create(ctx, domain.InterestAccrual{
		MemberID:        member.ID,
		PrincipalAmount: principal,
		InterestRate:    monthlyRate,
		InterestAmount:  interest,
		Period:          period,
		Year:            year,
		Timestamp:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	updated, updateErr := applyMemberUpdate(ctx, s.members, member.ID, func(m *domain.Member) {
		m.OutstandingBalance = m.OutstandingBalance.Add(interest)
	})
	if updateErr != nil {
		// запись начисления уже создана, дрейф чинится через Reconcile.
		return nil, &domain.AggregateUpdateError{
			EventType: "interest_calculation",
			EventID:   created.ID,
			MemberID:  member.ID,
			Err:       updateErr,
		}
	}

	return &AccrualEntry{
		MemberID:       member.ID,
		MemberName:     member.Name,
		Principal:      principal,
		InterestRate:   monthlyRate,
		InterestAmount: interest,
		NewBalance:     updated.OutstandingBalance,
	}, nil
}
