package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/service"
)

type TransactionsHandler struct {
	txSvs TransactionServicer
}

func NewTransactionsHandler(txSvs TransactionServicer) *TransactionsHandler {
	return &TransactionsHandler{
		txSvs: txSvs,
	}
}

type ContributionResponse struct {
	ID         string          `json:"id"`
	MemberID   string          `json:"memberId"`
	Amount     decimal.Decimal `json:"amount"`
	Period     domain.Period   `json:"period"`
	Year       int             `json:"year"`
	AssignedTo string          `json:"assignedTo"`
	Timestamp  time.Time       `json:"timestamp"`
}

func newContributionResponse(e *domain.Contribution) ContributionResponse {
	return ContributionResponse{
		ID:         e.ID,
		MemberID:   e.MemberID,
		Amount:     e.Amount,
		Period:     e.Period,
		Year:       e.Year,
		AssignedTo: e.AssignedTo,
		Timestamp:  e.Timestamp,
	}
}

type BorrowingResponse struct {
	ID                string          `json:"id"`
	MemberID          string          `json:"memberId"`
	Amount            decimal.Decimal `json:"amount"`
	Period            domain.Period   `json:"period"`
	Year              int             `json:"year"`
	MoneySource       string          `json:"moneySource"`
	Date              time.Time       `json:"date"`
	Status            string          `json:"status"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	Timestamp         time.Time       `json:"timestamp"`
}

func newBorrowingResponse(e *domain.Borrowing) BorrowingResponse {
	return BorrowingResponse{
		ID:                e.ID,
		MemberID:          e.MemberID,
		Amount:            e.Amount,
		Period:            e.Period,
		Year:              e.Year,
		MoneySource:       e.MoneySource,
		Date:              e.Date,
		Status:            string(e.Status),
		OutstandingAmount: e.OutstandingAmount,
		Timestamp:         e.Timestamp,
	}
}

type RepaymentResponse struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"memberId"`
	Amount    decimal.Decimal `json:"amount"`
	Period    domain.Period   `json:"period"`
	Year      int             `json:"year"`
	Date      time.Time       `json:"date"`
	Timestamp time.Time       `json:"timestamp"`
}

func newRepaymentResponse(e *domain.Repayment) RepaymentResponse {
	return RepaymentResponse{
		ID:        e.ID,
		MemberID:  e.MemberID,
		Amount:    e.Amount,
		Period:    e.Period,
		Year:      e.Year,
		Date:      e.Date,
		Timestamp: e.Timestamp,
	}
}

type TokenTransactionResponse struct {
	ID              string          `json:"id"`
	MemberID        string          `json:"memberId"`
	Shares          int64           `json:"shares"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Timestamp       time.Time       `json:"timestamp"`
}

func newTokenTransactionResponse(e *domain.TokenTransaction) TokenTransactionResponse {
	return TokenTransactionResponse{
		ID:              e.ID,
		MemberID:        e.MemberID,
		Shares:          e.Shares,
		TransactionType: string(e.TransactionType),
		Amount:          e.Amount,
		Date:            e.Date,
		Timestamp:       e.Timestamp,
	}
}

// respondRecorded отдает событие и свежего участника. Если событие записано, а
// обновление агрегатов упало, ответ все равно 201: событие уже в журнале,
// клиенту возвращается его id и флаг расхождения.
func respondRecorded(c *gin.Context, event any, member *domain.Member, err error) {
	if err != nil {
		var aggErr *domain.AggregateUpdateError
		if errors.As(err, &aggErr) {
			_ = c.Error(aggErr).SetType(gin.ErrorTypePrivate)
			c.JSON(http.StatusCreated, gin.H{
				"event":          event,
				"memberOutdated": true,
			})
			return
		}
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"event":  event,
		"member": newMemberResponse(member),
	})
}

type ContributionCreateParams struct {
	MemberID   string          `binding:"required"        json:"memberId"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `binding:"required,period" json:"period"`
	Year       int             `binding:"required"        json:"year"`
	AssignedTo string          `binding:"required"        json:"assignedTo"`
}

// CreateContribution POST RouteGroup + ContributionsRoute.
func (h *TransactionsHandler) CreateContribution(c *gin.Context) {
	var params ContributionCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	event, member, err := h.txSvs.RecordContribution(ctx, service.RecordContributionArgs{
		MemberID:   params.MemberID,
		Amount:     params.Amount,
		Period:     domain.Period(params.Period),
		Year:       params.Year,
		AssignedTo: params.AssignedTo,
	})
	var response any
	if event != nil {
		response = newContributionResponse(event)
	}
	respondRecorded(c, response, member, err)
}

type BorrowingCreateParams struct {
	MemberID    string          `binding:"required"        json:"memberId"`
	Amount      decimal.Decimal `json:"amount"`
	Period      string          `binding:"required,period" json:"period"`
	Year        int             `binding:"required"        json:"year"`
	MoneySource string          `binding:"required"        json:"moneySource"`
}

// CreateBorrowing POST RouteGroup + BorrowingsRoute.
func (h *TransactionsHandler) CreateBorrowing(c *gin.Context) {
	var params BorrowingCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	event, member, err := h.txSvs.RecordBorrowing(ctx, service.RecordBorrowingArgs{
		MemberID:    params.MemberID,
		Amount:      params.Amount,
		Period:      domain.Period(params.Period),
		Year:        params.Year,
		MoneySource: params.MoneySource,
	})
	var response any
	if event != nil {
		response = newBorrowingResponse(event)
	}
	respondRecorded(c, response, member, err)
}

type RepaymentCreateParams struct {
	MemberID string          `binding:"required"        json:"memberId"`
	Amount   decimal.Decimal `json:"amount"`
	Period   string          `binding:"required,period" json:"period"`
	Year     int             `binding:"required"        json:"year"`
}

// CreateRepayment POST RouteGroup + RepaymentsRoute.
func (h *TransactionsHandler) CreateRepayment(c *gin.Context) {
	var params RepaymentCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	event, member, err := h.txSvs.RecordRepayment(ctx, service.RecordRepaymentArgs{
		MemberID: params.MemberID,
		Amount:   params.Amount,
		Period:   domain.Period(params.Period),
		Year:     params.Year,
	})
	var response any
	if event != nil {
		response = newRepaymentResponse(event)
	}
	respondRecorded(c, response, member, err)
}

type TokenTransactionCreateParams struct {
	MemberID        string          `binding:"required"       json:"memberId"`
	Shares          int64           `binding:"required,min=1" json:"shares"`
	TransactionType string          `binding:"required"       json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
}

// CreateTokenTransaction POST RouteGroup + TokensRoute.
func (h *TransactionsHandler) CreateTokenTransaction(c *gin.Context) {
	var params TokenTransactionCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	event, member, err := h.txSvs.RecordTokenTransaction(ctx, service.RecordTokenTransactionArgs{
		MemberID:        params.MemberID,
		Shares:          params.Shares,
		TransactionType: domain.TokenTransactionType(params.TransactionType),
		Amount:          params.Amount,
	})
	var response any
	if event != nil {
		response = newTokenTransactionResponse(event)
	}
	respondRecorded(c, response, member, err)
}
