package service

import (
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/repository"
)

type AppServices struct {
	MemberService      *MemberService
	TransactionService *TransactionService
	AccrualService     *AccrualService
	ReportService      *ReportService
	RatesService       *RatesService
}

func Factory(repos *repository.Registry, rates domain.InterestRates, l *logrus.Logger) *AppServices {
	return &AppServices{
		MemberService: NewMemberService(
			repos.Members, repos.Contributions, repos.Borrowings, repos.Repayments, repos.InterestAccruals,
		),
		TransactionService: NewTransactionService(
			repos.Members, repos.Contributions, repos.Borrowings, repos.Repayments, repos.TokenTransactions,
		),
		AccrualService: NewAccrualService(repos.Members, repos.InterestAccruals, l),
		ReportService: NewReportService(
			repos.Members, repos.Contributions, repos.Borrowings, repos.Repayments, repos.InterestAccruals,
		),
		RatesService: NewRatesService(rates),
	}
}
