package service

import (
	"context"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

type MemberRepository interface {
	Create(ctx context.Context, member domain.Member) (*domain.Member, error)
	Get(ctx context.Context, id string) (*domain.Member, error)
	Update(ctx context.Context, member domain.Member) (*domain.Member, error)
	ListAll(ctx context.Context) ([]domain.Member, error)
}

type ContributionRepository interface {
	Create(ctx context.Context, event domain.Contribution) (*domain.Contribution, error)
	ListAll(ctx context.Context) ([]domain.Contribution, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Contribution, error)
}

type BorrowingRepository interface {
	Create(ctx context.Context, event domain.Borrowing) (*domain.Borrowing, error)
	ListAll(ctx context.Context) ([]domain.Borrowing, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Borrowing, error)
}

type RepaymentRepository interface {
	Create(ctx context.Context, event domain.Repayment) (*domain.Repayment, error)
	ListAll(ctx context.Context) ([]domain.Repayment, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Repayment, error)
}

type InterestAccrualRepository interface {
	Create(ctx context.Context, event domain.InterestAccrual) (*domain.InterestAccrual, error)
	ListAll(ctx context.Context) ([]domain.InterestAccrual, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.InterestAccrual, error)
}

type TokenTransactionRepository interface {
	Create(ctx context.Context, event domain.TokenTransaction) (*domain.TokenTransaction, error)
	ListAll(ctx context.Context) ([]domain.TokenTransaction, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.TokenTransaction, error)
}
