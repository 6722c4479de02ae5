package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/repository"
	"github.com/fsdevblog/titans-ledger/internal/store"
)

type AccrualServiceTestSuite struct {
	suite.Suite
	memStore *store.MemoryStore
	services *AppServices
}

func TestAccrualServiceSuite(t *testing.T) {
	suite.Run(t, new(AccrualServiceTestSuite))
}

func (s *AccrualServiceTestSuite) SetupTest() {
	s.memStore = store.NewMemoryStore()
	repos := repository.NewRegistry(s.memStore)
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	s.services = Factory(repos, DefaultRates(), l)
}

func (s *AccrualServiceTestSuite) memberWithBalance(name string, balance int64) *domain.Member {
	ctx := context.Background()
	member, err := s.services.MemberService.Register(ctx, RegisterMemberArgs{Name: name, Shares: 1})
	s.Require().NoError(err)

	if balance > 0 {
		_, member, err = s.services.TransactionService.RecordBorrowing(ctx, RecordBorrowingArgs{
			MemberID:    member.ID,
			Amount:      decimal.NewFromInt(balance),
			Period:      domain.Period("P1"),
			Year:        2025,
			MoneySource: domain.BankAssignee,
		})
		s.Require().NoError(err)
	}
	return member
}

func (s *AccrualServiceTestSuite) TestRunPeriodEnd() {
	debtor := s.memberWithBalance("Bob", 1000)
	clean := s.memberWithBalance("Alice", 0)
	ctx := context.Background()

	rate := decimal.NewFromInt(10)
	result, err := s.services.AccrualService.RunPeriodEnd(ctx, domain.Period("P2"), 2025, rate)
	s.Require().NoError(err)
	s.Require().NoError(result.BatchError())

	// обработан только должник.
	s.Equal(1, result.Processed)
	s.Require().Len(result.Entries, 1)

	entry := result.Entries[0]
	s.Equal(debtor.ID, entry.MemberID)
	s.True(entry.Principal.Equal(decimal.NewFromInt(1000)))
	s.True(entry.InterestAmount.Equal(decimal.NewFromInt(100)))
	s.True(entry.NewBalance.Equal(decimal.NewFromInt(1100)))

	// запись начисления создана с балансом на момент прогона.
	accruals, listErr := s.services.MemberService.Financials(ctx, debtor.ID)
	s.Require().NoError(listErr)
	s.True(accruals.OutstandingInterest.Equal(decimal.NewFromInt(100)))

	untouched, getErr := s.services.MemberService.Get(ctx, clean.ID)
	s.Require().NoError(getErr)
	s.True(untouched.OutstandingBalance.IsZero())
}

func (s *AccrualServiceTestSuite) TestRunPeriodEnd_NotIdempotent() {
	s.memberWithBalance("Bob", 1000)
	ctx := context.Background()
	rate := decimal.NewFromInt(10)

	first, err := s.services.AccrualService.RunPeriodEnd(ctx, domain.Period("P2"), 2025, rate)
	s.Require().NoError(err)
	second, err := s.services.AccrualService.RunPeriodEnd(ctx, domain.Period("P2"), 2025, rate)
	s.Require().NoError(err)

	// повторный прогон за тот же период начисляет проценты на уже
	// увеличенный баланс: это ожидаемое, документированное поведение,
	// а не баг.
	s.True(first.Entries[0].InterestAmount.Equal(decimal.NewFromInt(100)))
	s.True(second.Entries[0].InterestAmount.Equal(decimal.NewFromInt(110)))
	s.True(second.Entries[0].NewBalance.Equal(decimal.NewFromInt(1210)))
}

func (s *AccrualServiceTestSuite) TestRunPeriodEnd_PartialFailure() {
	s.memberWithBalance("Bob", 1000)
	s.memberWithBalance("Carol", 2000)
	ctx := context.Background()

	// первая запись начисления упадет, но прогон обязан дойти до конца.
	s.memStore.FailNext("create", store.TypeInterestAccrual, 1, domain.ErrStore)

	result, err := s.services.AccrualService.RunPeriodEnd(ctx, domain.Period("P3"), 2025, decimal.NewFromInt(10))
	s.Require().NoError(err)

	s.Equal(1, result.Processed)
	s.Require().Len(result.Failures, 1)

	batchErr := result.BatchError()
	s.Require().Error(batchErr)
	var batch *domain.BatchError
	s.ErrorAs(batchErr, &batch)
	s.Len(batch.Failures, 1)
}

func (s *AccrualServiceTestSuite) TestRunPeriodEnd_RejectsBadInput() {
	ctx := context.Background()

	_, err := s.services.AccrualService.RunPeriodEnd(ctx, domain.Period("P0"), 2025, decimal.NewFromInt(10))
	var validationErr *domain.ValidationError
	s.ErrorAs(err, &validationErr)

	_, err = s.services.AccrualService.RunPeriodEnd(ctx, domain.Period("P1"), 2025, decimal.NewFromInt(-1))
	s.ErrorAs(err, &validationErr)
}
