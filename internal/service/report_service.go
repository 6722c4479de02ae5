package service

import (
	"context"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/ledger"
)

// ReportService строит отчетные матрицы: сначала полный скан нужных
// коллекций, затем чистая агрегация в пакете ledger.
type ReportService struct {
	members       MemberRepository
	contributions ContributionRepository
	borrowings    BorrowingRepository
	repayments    RepaymentRepository
	accruals      InterestAccrualRepository
}

func NewReportService(
	members MemberRepository,
	contributions ContributionRepository,
	borrowings BorrowingRepository,
	repayments RepaymentRepository,
	accruals InterestAccrualRepository,
) *ReportService {
	return &ReportService{
		members:       members,
		contributions: contributions,
		borrowings:    borrowings,
		repayments:    repayments,
		accruals:      accruals,
	}
}

func (s *ReportService) Summary(ctx context.Context) (*ledger.SummaryTotals, error) {
	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	totals := ledger.Summarize(members)
	return &totals, nil
}

func validateRange(from, to domain.Period) error {
	if !from.Valid() || !to.Valid() {
		return domain.NewValidationError("period", "period must be one of P1..P12")
	}
	if from.Num() > to.Num() {
		return domain.NewValidationError("period", "start period is after end period")
	}
	return nil
}

func (s *ReportService) Borrowings(
	ctx context.Context, from, to domain.Period, year int,
) (*ledger.RangeMatrix, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	borrowings, err := s.borrowings.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	matrix := ledger.BorrowingsMatrix(members, borrowings, from, to, year)
	return &matrix, nil
}

func (s *ReportService) Repayments(
	ctx context.Context, from, to domain.Period, year int,
) (*ledger.RangeMatrix, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	repayments, err := s.repayments.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	matrix := ledger.RepaymentsMatrix(members, repayments, from, to, year)
	return &matrix, nil
}

func (s *ReportService) Interest(
	ctx context.Context, from, to domain.Period, year int,
) (*ledger.RangeMatrix, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	accruals, err := s.accruals.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	matrix := ledger.InterestMatrix(members, accruals, from, to, year)
	return &matrix, nil
}

func (s *ReportService) ContributionAllocations(
	ctx context.Context, period domain.Period, year int,
) (*ledger.AllocationMatrix, error) {
	if !period.Valid() {
		return nil, domain.NewValidationError("period", "period must be one of P1..P12")
	}
	members, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	contributions, err := s.contributions.ListAll(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	matrix := ledger.BuildAllocationMatrix(members, contributions, period, year)
	return &matrix, nil
}
