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

type TransactionServiceTestSuite struct {
	suite.Suite
	memStore *store.MemoryStore
	services *AppServices
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.memStore = store.NewMemoryStore()
	repos := repository.NewRegistry(s.memStore)
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	s.services = Factory(repos, DefaultRates(), l)
}

func (s *TransactionServiceTestSuite) registerMember(name string, shares int64) *domain.Member {
	member, err := s.services.MemberService.Register(context.Background(), RegisterMemberArgs{
		Name:   name,
		Shares: shares,
	})
	s.Require().NoError(err)
	return member
}

func (s *TransactionServiceTestSuite) TestRecordBorrowing_UpdatesAggregates() {
	member := s.registerMember("Bob", 1)
	ctx := context.Background()

	_, updated, err := s.services.TransactionService.RecordBorrowing(ctx, RecordBorrowingArgs{
		MemberID:    member.ID,
		Amount:      decimal.NewFromInt(3000),
		Period:      domain.Period("P1"),
		Year:        2025,
		MoneySource: domain.BankAssignee,
	})
	s.Require().NoError(err)

	// займ увеличивает и totalBorrowings, и outstandingBalance.
	s.True(updated.TotalBorrowings.Equal(decimal.NewFromInt(3000)))
	s.True(updated.OutstandingBalance.Equal(decimal.NewFromInt(3000)))
}

func (s *TransactionServiceTestSuite) TestRecordRepayment_FloorsBalanceAtZero() {
	member := s.registerMember("Bob", 1)
	ctx := context.Background()

	_, _, err := s.services.TransactionService.RecordBorrowing(ctx, RecordBorrowingArgs{
		MemberID:    member.ID,
		Amount:      decimal.NewFromInt(1000),
		Period:      domain.Period("P1"),
		Year:        2025,
		MoneySource: domain.BankAssignee,
	})
	s.Require().NoError(err)

	_, updated, err := s.services.TransactionService.RecordRepayment(ctx, RecordRepaymentArgs{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(1500),
		Period:   domain.Period("P2"),
		Year:     2025,
	})
	s.Require().NoError(err)

	s.True(updated.TotalRepayments.Equal(decimal.NewFromInt(1500)))
	// баланс не уходит в минус.
	s.True(updated.OutstandingBalance.IsZero())
}

func (s *TransactionServiceTestSuite) TestRecordContribution_Validation() {
	member := s.registerMember("Alice", 2)
	ctx := context.Background()

	cases := []struct {
		name string
		args RecordContributionArgs
	}{
		{
			name: "no member",
			args: RecordContributionArgs{Amount: decimal.NewFromInt(100), Period: "P1", Year: 2025, AssignedTo: "Bank"},
		}, {
			name: "negative amount",
			args: RecordContributionArgs{
				MemberID: member.ID, Amount: decimal.NewFromInt(-5), Period: "P1", Year: 2025, AssignedTo: "Bank",
			},
		}, {
			name: "bad period",
			args: RecordContributionArgs{
				MemberID: member.ID, Amount: decimal.NewFromInt(100), Period: "P13", Year: 2025, AssignedTo: "Bank",
			},
		}, {
			name: "no assignee",
			args: RecordContributionArgs{
				MemberID: member.ID, Amount: decimal.NewFromInt(100), Period: "P1", Year: 2025,
			},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, _, err := s.services.TransactionService.RecordContribution(ctx, tc.args)
			s.Require().Error(err)

			var validationErr *domain.ValidationError
			s.ErrorAs(err, &validationErr)

			// ошибки валидации не пишут в хранилище.
			contributions, listErr := s.memStore.ListByType(ctx, store.TypeContribution, 0)
			s.Require().NoError(listErr)
			s.Empty(contributions)
		})
	}
}

func (s *TransactionServiceTestSuite) TestRecordContribution_UnknownMember() {
	_, _, err := s.services.TransactionService.RecordContribution(context.Background(), RecordContributionArgs{
		MemberID:   "missing",
		Amount:     decimal.NewFromInt(100),
		Period:     domain.Period("P1"),
		Year:       2025,
		AssignedTo: domain.BankAssignee,
	})
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *TransactionServiceTestSuite) TestRecordBorrowing_AggregateUpdateFailureSurfaces() {
	member := s.registerMember("Bob", 1)
	ctx := context.Background()

	// событие создастся, а обновление участника упадет: ошибка хранилища
	// (не конфликт версий) не ретраится.
	s.memStore.FailNext("update", store.TypeMember, 1, domain.ErrStore)

	event, _, err := s.services.TransactionService.RecordBorrowing(ctx, RecordBorrowingArgs{
		MemberID:    member.ID,
		Amount:      decimal.NewFromInt(500),
		Period:      domain.Period("P3"),
		Year:        2025,
		MoneySource: domain.BankAssignee,
	})
	s.Require().Error(err)

	var updateErr *domain.AggregateUpdateError
	s.Require().ErrorAs(err, &updateErr)
	s.Require().NotNil(event)
	// ошибка называет осиротевшее событие: журнал и кэш разошлись.
	s.Equal(event.ID, updateErr.EventID)
	s.Equal(member.ID, updateErr.MemberID)

	borrowings, listErr := s.memStore.ListByType(ctx, store.TypeBorrowing, 0)
	s.Require().NoError(listErr)
	s.Len(borrowings, 1)
}

func (s *TransactionServiceTestSuite) TestRecordBorrowing_RetriesOnVersionConflict() {
	member := s.registerMember("Bob", 1)
	ctx := context.Background()

	// первая попытка условной записи конфликтует, вторая проходит.
	s.memStore.FailNext("update", store.TypeMember, 1, store.ErrVersionConflict)

	_, updated, err := s.services.TransactionService.RecordBorrowing(ctx, RecordBorrowingArgs{
		MemberID:    member.ID,
		Amount:      decimal.NewFromInt(700),
		Period:      domain.Period("P4"),
		Year:        2025,
		MoneySource: domain.BankAssignee,
	})
	s.Require().NoError(err)
	s.True(updated.OutstandingBalance.Equal(decimal.NewFromInt(700)))
}

func (s *TransactionServiceTestSuite) TestRecordTokenTransaction_SharesFloorAtZero() {
	member := s.registerMember("Carol", 2)
	ctx := context.Background()

	_, updated, err := s.services.TransactionService.RecordTokenTransaction(ctx, RecordTokenTransactionArgs{
		MemberID:        member.ID,
		Shares:          5,
		TransactionType: domain.TokenTransactionSale,
		Amount:          decimal.NewFromInt(5000),
	})
	s.Require().NoError(err)
	s.Equal(int64(0), updated.Shares)

	_, updated, err = s.services.TransactionService.RecordTokenTransaction(ctx, RecordTokenTransactionArgs{
		MemberID:        member.ID,
		Shares:          3,
		TransactionType: domain.TokenTransactionPurchase,
		Amount:          decimal.NewFromInt(3000),
	})
	s.Require().NoError(err)
	s.Equal(int64(3), updated.Shares)
}

func (s *TransactionServiceTestSuite) TestReconcile_RepairsDriftedAggregates() {
	member := s.registerMember("Bob", 1)
	ctx := context.Background()

	_, _, err := s.services.TransactionService.RecordBorrowing(ctx, RecordBorrowingArgs{
		MemberID:    member.ID,
		Amount:      decimal.NewFromInt(2000),
		Period:      domain.Period("P1"),
		Year:        2025,
		MoneySource: domain.BankAssignee,
	})
	s.Require().NoError(err)

	// имитируем дрейф: погашение записано в журнал, а кэш обновить не вышло.
	s.memStore.FailNext("update", store.TypeMember, 1, domain.ErrStore)
	_, _, err = s.services.TransactionService.RecordRepayment(ctx, RecordRepaymentArgs{
		MemberID: member.ID,
		Amount:   decimal.NewFromInt(500),
		Period:   domain.Period("P2"),
		Year:     2025,
	})
	var updateErr *domain.AggregateUpdateError
	s.Require().ErrorAs(err, &updateErr)

	drifted, err := s.services.MemberService.Get(ctx, member.ID)
	s.Require().NoError(err)
	s.True(drifted.OutstandingBalance.Equal(decimal.NewFromInt(2000)))
	s.True(drifted.TotalRepayments.IsZero())

	// пересчет из журнала возвращает кэш к свертке событий.
	reconciled, err := s.services.MemberService.Reconcile(ctx, member.ID)
	s.Require().NoError(err)
	s.True(reconciled.TotalRepayments.Equal(decimal.NewFromInt(500)))
	s.True(reconciled.OutstandingBalance.Equal(decimal.NewFromInt(1500)))
}

func (s *TransactionServiceTestSuite) TestFinancials_UnknownMemberDegradesToZero() {
	financials, err := s.services.MemberService.Financials(context.Background(), "missing")
	s.Require().NoError(err)
	s.True(financials.OutstandingCapital.IsZero())
	s.True(financials.OutstandingInterest.IsZero())
	s.True(financials.TotalOwing.IsZero())
}
