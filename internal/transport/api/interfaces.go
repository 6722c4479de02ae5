package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/ledger"
	"github.com/fsdevblog/titans-ledger/internal/service"
)

// MemberServicer интерфейс для подмены сервиса в тестах хендлеров.
type MemberServicer interface {
	Register(ctx context.Context, args service.RegisterMemberArgs) (*domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
	Get(ctx context.Context, id string) (*domain.Member, error)
	Summary(ctx context.Context, memberID string) (*service.MemberSummaryData, error)
	Schedule(ctx context.Context, memberID string, year int) ([]ledger.ScheduleEntry, error)
	History(ctx context.Context, memberID string) (*service.MemberHistory, error)
	Reconcile(ctx context.Context, memberID string) (*domain.Member, error)
}

type TransactionServicer interface {
	RecordContribution(
		ctx context.Context,
		args service.RecordContributionArgs,
	) (*domain.Contribution, *domain.Member, error)
	RecordBorrowing(
		ctx context.Context,
		args service.RecordBorrowingArgs,
	) (*domain.Borrowing, *domain.Member, error)
	RecordRepayment(
		ctx context.Context,
		args service.RecordRepaymentArgs,
	) (*domain.Repayment, *domain.Member, error)
	RecordTokenTransaction(
		ctx context.Context,
		args service.RecordTokenTransactionArgs,
	) (*domain.TokenTransaction, *domain.Member, error)
}

type AccrualServicer interface {
	RunPeriodEnd(
		ctx context.Context,
		period domain.Period,
		year int,
		monthlyRate decimal.Decimal,
	) (*service.PeriodEndResult, error)
}

type ReportServicer interface {
	Summary(ctx context.Context) (*ledger.SummaryTotals, error)
	Borrowings(ctx context.Context, from, to domain.Period, year int) (*ledger.RangeMatrix, error)
	Repayments(ctx context.Context, from, to domain.Period, year int) (*ledger.RangeMatrix, error)
	Interest(ctx context.Context, from, to domain.Period, year int) (*ledger.RangeMatrix, error)
	ContributionAllocations(ctx context.Context, period domain.Period, year int) (*ledger.AllocationMatrix, error)
}

type RatesServicer interface {
	Get() domain.InterestRates
	Update(rates domain.InterestRates) (domain.InterestRates, error)
}
