package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/titans-ledger/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup = "/api"

	MembersRoute             = "/members"
	MemberSummaryRoute       = "/members/:id/summary"
	MemberContributionsRoute = "/members/:id/contributions"
	MemberHistoryRoute       = "/members/:id/history"
	MemberReconcileRoute     = "/members/:id/reconcile"

	ContributionsRoute = "/contributions"
	BorrowingsRoute    = "/borrowings"
	RepaymentsRoute    = "/repayments"
	TokensRoute        = "/tokens"

	ReportSummaryRoute       = "/reports/summary"
	ReportBorrowingsRoute    = "/reports/borrowings"
	ReportRepaymentsRoute    = "/reports/repayments"
	ReportInterestRoute      = "/reports/interest"
	ReportContributionsRoute = "/reports/contributions"

	AdminLoginRoute     = "/admin/login"
	AdminRatesRoute     = "/admin/rates"
	AdminPeriodEndRoute = "/admin/period-end"

	MetricsRoute = "/metrics"
)

type RouterArgs struct {
	Logger             *logrus.Logger
	MemberService      MemberServicer
	TransactionService TransactionServicer
	AccrualService     AccrualServicer
	ReportService      ReportServicer
	RatesService       RatesServicer
	AdminPasswordHash  string
	JWTSecretKey       []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("new router: %s", err.Error())
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Metrics())
	r.Use(middlewares.Errors())

	membersHandler := NewMembersHandler(args.MemberService)
	transactionsHandler := NewTransactionsHandler(args.TransactionService)
	reportsHandler := NewReportsHandler(args.ReportService)
	adminHandler := NewAdminHandler(
		args.AccrualService,
		args.RatesService,
		args.AdminPasswordHash,
		args.JWTSecretKey,
	)

	r.GET(MetricsRoute, gin.WrapH(promhttp.Handler()))

	api := r.Group(RouteGroup)

	api.POST(MembersRoute, membersHandler.Create)
	api.GET(MembersRoute, membersHandler.Index)
	api.GET(MemberSummaryRoute, membersHandler.Summary)
	api.GET(MemberContributionsRoute, membersHandler.Schedule)
	api.GET(MemberHistoryRoute, membersHandler.History)
	api.POST(MemberReconcileRoute, membersHandler.Reconcile)

	api.POST(ContributionsRoute, transactionsHandler.CreateContribution)
	api.POST(BorrowingsRoute, transactionsHandler.CreateBorrowing)
	api.POST(RepaymentsRoute, transactionsHandler.CreateRepayment)
	api.POST(TokensRoute, transactionsHandler.CreateTokenTransaction)

	api.GET(ReportSummaryRoute, reportsHandler.Summary)
	api.GET(ReportBorrowingsRoute, reportsHandler.Borrowings)
	api.GET(ReportRepaymentsRoute, reportsHandler.Repayments)
	api.GET(ReportInterestRoute, reportsHandler.Interest)
	api.GET(ReportContributionsRoute, reportsHandler.Contributions)

	api.POST(AdminLoginRoute, adminHandler.Login)

	admin := api.Group("")
	admin.Use(middlewares.AdminRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют администраторского токена.
	admin.GET(AdminRatesRoute, adminHandler.GetRates)
	admin.PUT(AdminRatesRoute, adminHandler.UpdateRates)
	admin.POST(AdminPeriodEndRoute, adminHandler.PeriodEnd)

	return r, nil
}
