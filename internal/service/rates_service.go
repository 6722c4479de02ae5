package service

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// RatesService хранит текущие процентные ставки. Значения живут только в
// памяти процесса и не версионируются: смена ставки не влияет на прошлые
// начисления. Прогон начисления получает ставку явным аргументом, а не лезет
// в это состояние сам.
type RatesService struct {
	mu    sync.RWMutex
	rates domain.InterestRates
}

func NewRatesService(initial domain.InterestRates) *RatesService {
	return &RatesService{rates: initial}
}

func (s *RatesService) Get() domain.InterestRates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates
}

func (s *RatesService) Update(rates domain.InterestRates) (domain.InterestRates, error) {
	if rates.Monthly.IsNegative() || rates.Annual.IsNegative() {
		return domain.InterestRates{}, domain.NewValidationError("rates", "interest rates must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = rates
	return s.rates, nil
}

// DefaultRates - ставки общества по умолчанию: 10% в месяц, 120% в год.
func DefaultRates() domain.InterestRates {
	return domain.InterestRates{
		Monthly: decimal.NewFromInt(10),
		Annual:  decimal.NewFromInt(120),
	}
}
