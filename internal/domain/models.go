package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

// Member хранит кэшированные агрегаты (totalContributions, totalBorrowings,
// totalRepayments, outstandingBalance). Они являются производными от журнала
// событий и пересчитываются из него операцией Reconcile.
type Member struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	// Version - токен оптимистичной блокировки записи в хранилище.
	Version    int64
	Name       string
	Email      string
	Phone      string
	Address    string
	NationalID string
	Shares     int64
	Status     MemberStatusType
	DateJoined time.Time

	TotalContributions decimal.Decimal
	TotalBorrowings    decimal.Decimal
	TotalRepayments    decimal.Decimal
	OutstandingBalance decimal.Decimal
}

type Contribution struct {
	ID         string
	MemberID   string
	Amount     decimal.Decimal
	Period     Period
	Year       int
	AssignedTo string
	Timestamp  time.Time
}

type Borrowing struct {
	ID                string
	MemberID          string
	Amount            decimal.Decimal
	Period            Period
	Year              int
	MoneySource       string
	Date              time.Time
	Status            BorrowingStatusType
	OutstandingAmount decimal.Decimal
	Timestamp         time.Time
}

type Repayment struct {
	ID        string
	MemberID  string
	Amount    decimal.Decimal
	Period    Period
	Year      int
	Date      time.Time
	Timestamp time.Time
}

type InterestAccrual struct {
	ID              string
	MemberID        string
	PrincipalAmount decimal.Decimal
	InterestRate    decimal.Decimal
	InterestAmount  decimal.Decimal
	Period          Period
	Year            int
	Timestamp       time.Time
}

type TokenTransaction struct {
	ID              string
	MemberID        string
	Shares          int64
	TransactionType TokenTransactionType
	Amount          decimal.Decimal
	Date            time.Time
	Timestamp       time.Time
}

// InterestRates задаются в процентах (10 = 10%).
type InterestRates struct {
	Monthly decimal.Decimal
	Annual  decimal.Decimal
}
