package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/ledger"
)

type MemberService struct {
	members       MemberRepository
	contributions ContributionRepository
	borrowings    BorrowingRepository
	repayments    RepaymentRepository
	accruals      InterestAccrualRepository
}

func NewMemberService(
	members MemberRepository,
	contributions ContributionRepository,
	borrowings BorrowingRepository,
	repayments RepaymentRepository,
	accruals InterestAccrualRepository,
) *MemberService {
	return &MemberService{
		members:       members,
		contributions: contributions,
		borrowings:    borrowings,
		repayments:    repayments,
		accruals:      accruals,
	}
}

type RegisterMemberArgs struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	NationalID string
	Shares     int64
}

// Register создает участника с нулевыми агрегатами и статусом active.
// Участники никогда не удаляются.
func (s *MemberService) Register(ctx context.Context, args RegisterMemberArgs) (*domain.Member, error) {
	if strings.TrimSpace(args.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if args.Shares < 1 {
		return nil, domain.NewValidationError("shares", "shares must be at least 1")
	}

	member, err := s.members.Create(ctx, domain.Member{
		Name:               strings.TrimSpace(args.Name),
		Email:              args.Email,
		Phone:              args.Phone,
		Address:            args.Address,
		NationalID:         args.NationalID,
		Shares:             args.Shares,
		Status:             domain.MemberStatusActive,
		DateJoined:         time.Now().UTC(),
		TotalContributions: decimal.Zero,
		TotalBorrowings:    decimal.Zero,
		TotalRepayments:    decimal.Zero,
		OutstandingBalance: decimal.Zero,
	})
	if err != nil {
		return nil, fmt.Errorf("registering member: %w", err)
	}
	return member, nil
}

func (s *MemberService) List(ctx context.Context) ([]domain.Member, error) {
	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return members, nil
}

func (s *MemberService) Get(ctx context.Context, id string) (*domain.Member, error) {
	member, err := s.members.Get(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return member, nil
}

// MemberFinancials - производные показатели задолженности участника.
type MemberFinancials struct {
	OutstandingCapital  decimal.Decimal
	OutstandingInterest decimal.Decimal
	TotalOwing          decimal.Decimal
}

// Financials считает задолженность участника сверткой журнала событий.
// Участник не обязан существовать: для неразрешимой ссылки все списки пусты
// и показатели нулевые, ошибки нет.
func (s *MemberService) Financials(ctx context.Context, memberID string) (*MemberFinancials, error) {
	borrowings, err := s.borrowings.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	repayments, err := s.repayments.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	accruals, err := s.accruals.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &MemberFinancials{
		OutstandingCapital:  ledger.OutstandingCapital(borrowings, repayments),
		OutstandingInterest: ledger.OutstandingInterest(borrowings, repayments, accruals),
		TotalOwing:          ledger.TotalOwing(borrowings, repayments, accruals),
	}, nil
}

// EventCounts - количество записей журнала участника для сводной таблицы.
type EventCounts struct {
	Contributions int
	Borrowings    int
	Repayments    int
}

// MemberSummaryData - участник вместе с его журналом, счетчиками записей и
// показателями задолженности, для сводного экрана.
type MemberSummaryData struct {
	Member        domain.Member
	Contributions []domain.Contribution
	Borrowings    []domain.Borrowing
	Repayments    []domain.Repayment
	Counts        EventCounts
	Financials    MemberFinancials
}

func (s *MemberService) Summary(ctx context.Context, memberID string) (*MemberSummaryData, error) {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	contributions, err := s.contributions.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	borrowings, err := s.borrowings.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	repayments, err := s.repayments.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	accruals, err := s.accruals.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &MemberSummaryData{
		Member:        *member,
		Contributions: contributions,
		Borrowings:    borrowings,
		Repayments:    repayments,
		Counts: EventCounts{
			Contributions: len(contributions),
			Borrowings:    len(borrowings),
			Repayments:    len(repayments),
		},
		Financials: MemberFinancials{
			OutstandingCapital:  ledger.OutstandingCapital(borrowings, repayments),
			OutstandingInterest: ledger.OutstandingInterest(borrowings, repayments, accruals),
			TotalOwing:          ledger.TotalOwing(borrowings, repayments, accruals),
		},
	}, nil
}

// Schedule строит сетку взносов участника за год.
func (s *MemberService) Schedule(ctx context.Context, memberID string, year int) ([]ledger.ScheduleEntry, error) {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	contributions, err := s.contributions.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return ledger.ContributionSchedule(member.Shares, contributions, year), nil
}

// MemberHistory - сетки займов и погашений участника по периодам.
type MemberHistory struct {
	Borrowings ledger.History
	Repayments ledger.History
}

func (s *MemberService) History(ctx context.Context, memberID string) (*MemberHistory, error) {
	borrowings, err := s.borrowings.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	repayments, err := s.repayments.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &MemberHistory{
		Borrowings: ledger.BorrowingHistory(borrowings),
		Repayments: ledger.RepaymentHistory(repayments),
	}, nil
}

// Reconcile пересчитывает кэшированные агрегаты участника из журнала событий
// и записывает их обратно. Кэш - это свертка журнала; операция лечит дрейф
// после частично упавших двухфазных записей. Количество долей не трогается:
// стартовые доли участника не представлены событием в журнале.
func (s *MemberService) Reconcile(ctx context.Context, memberID string) (*domain.Member, error) {
	if _, err := s.members.Get(ctx, memberID); err != nil {
		return nil, err //nolint:wrapcheck
	}

	contributions, err := s.contributions.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	borrowings, err := s.borrowings.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	repayments, err := s.repayments.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	accruals, err := s.accruals.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	totalContributions := decimal.Zero
	for _, c := range contributions {
		totalContributions = totalContributions.Add(c.Amount)
	}
	totalBorrowings := decimal.Zero
	for _, b := range borrowings {
		totalBorrowings = totalBorrowings.Add(b.Amount)
	}
	totalRepayments := decimal.Zero
	for _, r := range repayments {
		totalRepayments = totalRepayments.Add(r.Amount)
	}
	outstanding := ledger.TotalOwing(borrowings, repayments, accruals)

	member, err := applyMemberUpdate(ctx, s.members, memberID, func(m *domain.Member) {
		m.TotalContributions = totalContributions
		m.TotalBorrowings = totalBorrowings
		m.TotalRepayments = totalRepayments
		m.OutstandingBalance = outstanding
	})
	if err != nil {
		return nil, fmt.Errorf("reconciling member %s: %w", memberID, err)
	}
	return member, nil
}

// IsNotFound - удобный предикат для транспортного слоя.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrRecordNotFound)
}
