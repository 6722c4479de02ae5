package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// TransactionService записывает события журнала и следом обновляет
// кэшированные агрегаты участника. Это двухфазная запись без атомарности:
// если событие создано, а обновление участника упало, возвращается
// *domain.AggregateUpdateError с id осиротевшего события - вызывающая
// сторона решает, чинить ли дрейф через Reconcile.
type TransactionService struct {
	members       MemberRepository
	contributions ContributionRepository
	borrowings    BorrowingRepository
	repayments    RepaymentRepository
	tokens        TokenTransactionRepository
}

func NewTransactionService(
	members MemberRepository,
	contributions ContributionRepository,
	borrowings BorrowingRepository,
	repayments RepaymentRepository,
	tokens TokenTransactionRepository,
) *TransactionService {
	return &TransactionService{
		members:       members,
		contributions: contributions,
		borrowings:    borrowings,
		repayments:    repayments,
		tokens:        tokens,
	}
}

type RecordContributionArgs struct {
	MemberID   string
	Amount     decimal.Decimal
	Period     domain.Period
	Year       int
	AssignedTo string
}

// RecordContribution записывает взнос и прибавляет его к totalContributions
// участника. Взнос назначается либо кассе ("Bank"), либо другому участнику
// по имени.
func (s *TransactionService) RecordContribution(
	ctx context.Context,
	args RecordContributionArgs,
) (*domain.Contribution, *domain.Member, error) {
	if err := validateCommon(args.MemberID, args.Period, args.Year); err != nil {
		return nil, nil, err
	}
	if args.Amount.IsNegative() {
		return nil, nil, domain.NewValidationError("amount", "contribution amount must not be negative")
	}
	if strings.TrimSpace(args.AssignedTo) == "" {
		return nil, nil, domain.NewValidationError("assignedTo", "contribution assignee is required")
	}

	if _, err := s.members.Get(ctx, args.MemberID); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	event, err := s.contributions.Create(ctx, domain.Contribution{
		MemberID:   args.MemberID,
		Amount:     args.Amount,
		Period:     args.Period,
		Year:       args.Year,
		AssignedTo: args.AssignedTo,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	member, updateErr := applyMemberUpdate(ctx, s.members, args.MemberID, func(m *domain.Member) {
		m.TotalContributions = m.TotalContributions.Add(args.Amount)
	})
	if updateErr != nil {
		return event, nil, &domain.AggregateUpdateError{
			EventType: "contribution",
			EventID:   event.ID,
			MemberID:  args.MemberID,
			Err:       updateErr,
		}
	}
	return event, member, nil
}

type RecordBorrowingArgs struct {
	MemberID    string
	Amount      decimal.Decimal
	Period      domain.Period
	Year        int
	MoneySource string
}

// RecordBorrowing записывает займ и увеличивает totalBorrowings вместе с
// outstandingBalance участника.
func (s *TransactionService) RecordBorrowing(
	ctx context.Context,
	args RecordBorrowingArgs,
) (*domain.Borrowing, *domain.Member, error) {
	if err := validateCommon(args.MemberID, args.Period, args.Year); err != nil {
		return nil, nil, err
	}
	if !args.Amount.IsPositive() {
		return nil, nil, domain.NewValidationError("amount", "borrowing amount must be positive")
	}
	if strings.TrimSpace(args.MoneySource) == "" {
		return nil, nil, domain.NewValidationError("moneySource", "money source is required")
	}

	if _, err := s.members.Get(ctx, args.MemberID); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	now := time.Now().UTC()
	event, err := s.borrowings.Create(ctx, domain.Borrowing{
		MemberID:          args.MemberID,
		Amount:            args.Amount,
		Period:            args.Period,
		Year:              args.Year,
		MoneySource:       args.MoneySource,
		Date:              now,
		Status:            domain.BorrowingStatusActive,
		OutstandingAmount: args.Amount,
		Timestamp:         now,
	})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	member, updateErr := applyMemberUpdate(ctx, s.members, args.MemberID, func(m *domain.Member) {
		m.TotalBorrowings = m.TotalBorrowings.Add(args.Amount)
		m.OutstandingBalance = m.OutstandingBalance.Add(args.Amount)
	})
	if updateErr != nil {
		return event, nil, &domain.AggregateUpdateError{
			EventType: "borrowing",
			EventID:   event.ID,
			MemberID:  args.MemberID,
			Err:       updateErr,
		}
	}
	return event, member, nil
}

type RecordRepaymentArgs struct {
	MemberID string
	Amount   decimal.Decimal
	Period   domain.Period
	Year     int
}

// RecordRepayment записывает погашение, прибавляет его к totalRepayments и
// уменьшает outstandingBalance. Баланс не уходит в минус: излишек погашения
// учитывается только агрегациями журнала (зачет процентов).
func (s *TransactionService) RecordRepayment(
	ctx context.Context,
	args RecordRepaymentArgs,
) (*domain.Repayment, *domain.Member, error) {
	if err := validateCommon(args.MemberID, args.Period, args.Year); err != nil {
		return nil, nil, err
	}
	if !args.Amount.IsPositive() {
		return nil, nil, domain.NewValidationError("amount", "repayment amount must be positive")
	}

	if _, err := s.members.Get(ctx, args.MemberID); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	now := time.Now().UTC()
	event, err := s.repayments.Create(ctx, domain.Repayment{
		MemberID:  args.MemberID,
		Amount:    args.Amount,
		Period:    args.Period,
		Year:      args.Year,
		Date:      now,
		Timestamp: now,
	})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	member, updateErr := applyMemberUpdate(ctx, s.members, args.MemberID, func(m *domain.Member) {
		m.TotalRepayments = m.TotalRepayments.Add(args.Amount)
		balance := m.OutstandingBalance.Sub(args.Amount)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		m.OutstandingBalance = balance
	})
	if updateErr != nil {
		return event, nil, &domain.AggregateUpdateError{
			EventType: "repayment",
			EventID:   event.ID,
			MemberID:  args.MemberID,
			Err:       updateErr,
		}
	}
	return event, member, nil
}

type RecordTokenTransactionArgs struct {
	MemberID        string
	Shares          int64
	TransactionType domain.TokenTransactionType
	Amount          decimal.Decimal
}

// RecordTokenTransaction записывает операцию с долями и корректирует счетчик
// долей участника: покупка прибавляет, продажа и передача отнимают, итог не
// опускается ниже нуля.
func (s *TransactionService) RecordTokenTransaction(
	ctx context.Context,
	args RecordTokenTransactionArgs,
) (*domain.TokenTransaction, *domain.Member, error) {
	if strings.TrimSpace(args.MemberID) == "" {
		return nil, nil, domain.NewValidationError("memberId", "member is required")
	}
	if args.Shares < 1 {
		return nil, nil, domain.NewValidationError("shares", "share quantity must be at least 1")
	}
	switch args.TransactionType {
	case domain.TokenTransactionPurchase, domain.TokenTransactionSale, domain.TokenTransactionTransfer:
	default:
		return nil, nil, domain.NewValidationError("transactionType", "unknown transaction type")
	}
	if args.Amount.IsNegative() {
		return nil, nil, domain.NewValidationError("amount", "amount must not be negative")
	}

	if _, err := s.members.Get(ctx, args.MemberID); err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	now := time.Now().UTC()
	event, err := s.tokens.Create(ctx, domain.TokenTransaction{
		MemberID:        args.MemberID,
		Shares:          args.Shares,
		TransactionType: args.TransactionType,
		Amount:          args.Amount,
		Date:            now,
		Timestamp:       now,
	})
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	member, updateErr := applyMemberUpdate(ctx, s.members, args.MemberID, func(m *domain.Member) {
		if args.TransactionType == domain.TokenTransactionPurchase {
			m.Shares += args.Shares
			return
		}
		m.Shares -= args.Shares
		if m.Shares < 0 {
			m.Shares = 0
		}
	})
	if updateErr != nil {
		return event, nil, &domain.AggregateUpdateError{
			EventType: "token_transaction",
			EventID:   event.ID,
			MemberID:  args.MemberID,
			Err:       updateErr,
		}
	}
	return event, member, nil
}

func validateCommon(memberID string, period domain.Period, year int) error {
	if strings.TrimSpace(memberID) == "" {
		return domain.NewValidationError("memberId", "member is required")
	}
	if !period.Valid() {
		return domain.NewValidationError("period", "period must be one of P1..P12")
	}
	if year < 2000 || year > 2100 {
		return domain.NewValidationError("year", "year is out of range")
	}
	return nil
}
