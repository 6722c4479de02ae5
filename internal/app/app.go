package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/titans-ledger/internal/config"
	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/repository"
	"github.com/fsdevblog/titans-ledger/internal/service"
	"github.com/fsdevblog/titans-ledger/internal/store"
	"github.com/fsdevblog/titans-ledger/internal/transport/api"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)

	client, clientErr := initStore(a.Config)
	if clientErr != nil {
		return fmt.Errorf("app run: %s", clientErr.Error())
	}
	defer func() { _ = client.Close() }()

	repos := repository.NewRegistry(client)

	rates, ratesErr := initRates(a.Config)
	if ratesErr != nil {
		return fmt.Errorf("app run: %s", ratesErr.Error())
	}

	services := service.Factory(repos, rates, a.Logger)

	router, routerErr := api.New(api.RouterArgs{
		Logger:             a.Logger,
		MemberService:      services.MemberService,
		TransactionService: services.TransactionService,
		AccrualService:     services.AccrualService,
		ReportService:      services.ReportService,
		RatesService:       services.RatesService,
		AdminPasswordHash:  a.Config.AdminPasswordHash,
		JWTSecretKey:       []byte(a.Config.JWTAdminSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// initStore выбирает хранилище объектов: удаленное по базовому URL или
// локальное sqlite по DSN.
func initStore(conf *config.Config) (store.Client, error) {
	if conf.StoreBaseURL != "" {
		return store.NewHTTPStore(conf.StoreBaseURL), nil
	}
	client, err := store.NewSQLiteStore(conf.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("init store: %s", err.Error())
	}
	return client, nil
}

// initRates читает стартовые ставки из конфигурации, пустые значения
// заменяются ставками общества по умолчанию.
func initRates(conf *config.Config) (domain.InterestRates, error) {
	rates := service.DefaultRates()

	if conf.MonthlyRate != "" {
		monthly, err := decimal.NewFromString(conf.MonthlyRate)
		if err != nil {
			return domain.InterestRates{}, fmt.Errorf("init rates: monthly: %s", err.Error())
		}
		rates.Monthly = monthly
	}
	if conf.AnnualRate != "" {
		annual, err := decimal.NewFromString(conf.AnnualRate)
		if err != nil {
			return domain.InterestRates{}, fmt.Errorf("init rates: annual: %s", err.Error())
		}
		rates.Annual = annual
	}
	return rates, nil
}
