package repository

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/store"
)

// dateLayout - формат календарной даты события, отдельной от timestamp.
const dateLayout = "2006-01-02"

// eventRepo - общая механика append-only репозиториев журнала событий.
// События создаются один раз и никогда не обновляются.
type eventRepo[T any] struct {
	client     store.Client
	typ        string
	toPayload  func(T) any
	fromRecord func(store.Record) (T, error)
	memberID   func(T) string
}

func (r *eventRepo[T]) Create(ctx context.Context, event T) (*T, error) {
	data, err := marshalPayload(r.toPayload(event))
	if err != nil {
		return nil, err
	}
	record, createErr := r.client.Create(ctx, r.typ, data)
	if createErr != nil {
		return nil, convertErr(createErr, "create "+r.typ)
	}
	created, decodeErr := r.fromRecord(*record)
	if decodeErr != nil {
		return nil, decodeErr
	}
	return &created, nil
}

func (r *eventRepo[T]) ListAll(ctx context.Context) ([]T, error) {
	records, err := r.client.ListByType(ctx, r.typ, store.DefaultListLimit)
	if err != nil {
		return nil, convertErr(err, "list "+r.typ)
	}
	events := make([]T, 0, len(records))
	for _, record := range records {
		event, decodeErr := r.fromRecord(record)
		if decodeErr != nil {
			return nil, decodeErr
		}
		events = append(events, event)
	}
	return events, nil
}

// ListByMember - полный скан коллекции с клиентской фильтрацией: хранилище
// не умеет выборки по полям payload.
func (r *eventRepo[T]) ListByMember(ctx context.Context, memberID string) ([]T, error) {
	events, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := events[:0]
	for _, event := range events {
		if r.memberID(event) == memberID {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

func decodePayload[P any](record store.Record, typ string) (P, error) {
	var payload P
	if err := json.Unmarshal(record.Data, &payload); err != nil {
		return payload, pkgerrors.Wrapf(err, "[repository] decode %s %s", typ, record.ID)
	}
	return payload, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type contributionPayload struct {
	MemberID   string          `json:"memberId"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period"`
	Year       int             `json:"year"`
	AssignedTo string          `json:"assignedTo"`
	Timestamp  time.Time       `json:"timestamp"`
}

type ContributionRepo struct {
	eventRepo[domain.Contribution]
}

func NewContributionRepo(client store.Client) *ContributionRepo {
	return &ContributionRepo{eventRepo[domain.Contribution]{
		client: client,
		typ:    store.TypeContribution,
		toPayload: func(c domain.Contribution) any {
			return contributionPayload{
				MemberID:   c.MemberID,
				Amount:     c.Amount,
				Period:     string(c.Period),
				Year:       c.Year,
				AssignedTo: c.AssignedTo,
				Timestamp:  c.Timestamp,
			}
		},
		fromRecord: func(record store.Record) (domain.Contribution, error) {
			payload, err := decodePayload[contributionPayload](record, store.TypeContribution)
			if err != nil {
				return domain.Contribution{}, err
			}
			return domain.Contribution{
				ID:         record.ID,
				MemberID:   payload.MemberID,
				Amount:     payload.Amount,
				Period:     domain.Period(payload.Period),
				Year:       payload.Year,
				AssignedTo: payload.AssignedTo,
				Timestamp:  payload.Timestamp,
			}, nil
		},
		memberID: func(c domain.Contribution) string { return c.MemberID },
	}}
}

type borrowingPayload struct {
	MemberID          string          `json:"memberId"`
	Amount            decimal.Decimal `json:"amount"`
	Period            string          `json:"period"`
	Year              int             `json:"year"`
	MoneySource       string          `json:"moneySource"`
	Date              string          `json:"date"`
	Status            string          `json:"status"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	Timestamp         time.Time       `json:"timestamp"`
}

type BorrowingRepo struct {
	eventRepo[domain.Borrowing]
}

func NewBorrowingRepo(client store.Client) *BorrowingRepo {
	return &BorrowingRepo{eventRepo[domain.Borrowing]{
		client: client,
		typ:    store.TypeBorrowing,
		toPayload: func(b domain.Borrowing) any {
			return borrowingPayload{
				MemberID:          b.MemberID,
				Amount:            b.Amount,
				Period:            string(b.Period),
				Year:              b.Year,
				MoneySource:       b.MoneySource,
				Date:              formatDate(b.Date),
				Status:            string(b.Status),
				OutstandingAmount: b.OutstandingAmount,
				Timestamp:         b.Timestamp,
			}
		},
		fromRecord: func(record store.Record) (domain.Borrowing, error) {
			payload, err := decodePayload[borrowingPayload](record, store.TypeBorrowing)
			if err != nil {
				return domain.Borrowing{}, err
			}
			return domain.Borrowing{
				ID:                record.ID,
				MemberID:          payload.MemberID,
				Amount:            payload.Amount,
				Period:            domain.Period(payload.Period),
				Year:              payload.Year,
				MoneySource:       payload.MoneySource,
				Date:              parseDate(payload.Date),
				Status:            domain.BorrowingStatusType(payload.Status),
				OutstandingAmount: payload.OutstandingAmount,
				Timestamp:         payload.Timestamp,
			}, nil
		},
		memberID: func(b domain.Borrowing) string { return b.MemberID },
	}}
}

type repaymentPayload struct {
	MemberID  string          `json:"memberId"`
	Amount    decimal.Decimal `json:"amount"`
	Period    string          `json:"period"`
	Year      int             `json:"year"`
	Date      string          `json:"date"`
	Timestamp time.Time       `json:"timestamp"`
}

type RepaymentRepo struct {
	eventRepo[domain.Repayment]
}

func NewRepaymentRepo(client store.Client) *RepaymentRepo {
	return &RepaymentRepo{eventRepo[domain.Repayment]{
		client: client,
		typ:    store.TypeRepayment,
		toPayload: func(r domain.Repayment) any {
			return repaymentPayload{
				MemberID:  r.MemberID,
				Amount:    r.Amount,
				Period:    string(r.Period),
				Year:      r.Year,
				Date:      formatDate(r.Date),
				Timestamp: r.Timestamp,
			}
		},
		fromRecord: func(record store.Record) (domain.Repayment, error) {
			payload, err := decodePayload[repaymentPayload](record, store.TypeRepayment)
			if err != nil {
				return domain.Repayment{}, err
			}
			return domain.Repayment{
				ID:        record.ID,
				MemberID:  payload.MemberID,
				Amount:    payload.Amount,
				Period:    domain.Period(payload.Period),
				Year:      payload.Year,
				Date:      parseDate(payload.Date),
				Timestamp: payload.Timestamp,
			}, nil
		},
		memberID: func(r domain.Repayment) string { return r.MemberID },
	}}
}

type interestAccrualPayload struct {
	MemberID        string          `json:"memberId"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	Period          string          `json:"period"`
	Year            int             `json:"year"`
	Timestamp       time.Time       `json:"timestamp"`
}

type InterestAccrualRepo struct {
	eventRepo[domain.InterestAccrual]
}

func NewInterestAccrualRepo(client store.Client) *InterestAccrualRepo {
	return &InterestAccrualRepo{eventRepo[domain.InterestAccrual]{
		client: client,
		typ:    store.TypeInterestAccrual,
		toPayload: func(a domain.InterestAccrual) any {
			return interestAccrualPayload{
				MemberID:        a.MemberID,
				PrincipalAmount: a.PrincipalAmount,
				InterestRate:    a.InterestRate,
				InterestAmount:  a.InterestAmount,
				Period:          string(a.Period),
				Year:            a.Year,
				Timestamp:       a.Timestamp,
			}
		},
		fromRecord: func(record store.Record) (domain.InterestAccrual, error) {
			payload, err := decodePayload[interestAccrualPayload](record, store.TypeInterestAccrual)
			if err != nil {
				return domain.InterestAccrual{}, err
			}
			return domain.InterestAccrual{
				ID:              record.ID,
				MemberID:        payload.MemberID,
				PrincipalAmount: payload.PrincipalAmount,
				InterestRate:    payload.InterestRate,
				InterestAmount:  payload.InterestAmount,
				Period:          domain.Period(payload.Period),
				Year:            payload.Year,
				Timestamp:       payload.Timestamp,
			}, nil
		},
		memberID: func(a domain.InterestAccrual) string { return a.MemberID },
	}}
}

type tokenTransactionPayload struct {
	MemberID        string          `json:"memberId"`
	Shares          int64           `json:"shares"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	Timestamp       time.Time       `json:"timestamp"`
}

type TokenTransactionRepo struct {
	eventRepo[domain.TokenTransaction]
}

func NewTokenTransactionRepo(client store.Client) *TokenTransactionRepo {
	return &TokenTransactionRepo{eventRepo[domain.TokenTransaction]{
		client: client,
		typ:    store.TypeTokenTransaction,
		toPayload: func(t domain.TokenTransaction) any {
			return tokenTransactionPayload{
				MemberID:        t.MemberID,
				Shares:          t.Shares,
				TransactionType: string(t.TransactionType),
				Amount:          t.Amount,
				Date:            formatDate(t.Date),
				Timestamp:       t.Timestamp,
			}
		},
		fromRecord: func(record store.Record) (domain.TokenTransaction, error) {
			payload, err := decodePayload[tokenTransactionPayload](record, store.TypeTokenTransaction)
			if err != nil {
				return domain.TokenTransaction{}, err
			}
			return domain.TokenTransaction{
				ID:              record.ID,
				MemberID:        payload.MemberID,
				Shares:          payload.Shares,
				TransactionType: domain.TokenTransactionType(payload.TransactionType),
				Amount:          payload.Amount,
				Date:            parseDate(payload.Date),
				Timestamp:       payload.Timestamp,
			}, nil
		},
		memberID: func(t domain.TokenTransaction) string { return t.MemberID },
	}}
}
