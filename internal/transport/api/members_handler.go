package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/ledger"
	"github.com/fsdevblog/titans-ledger/internal/service"
)

type MembersHandler struct {
	memberSvs MemberServicer
}

func NewMembersHandler(memberSvs MemberServicer) *MembersHandler {
	return &MembersHandler{
		memberSvs: memberSvs,
	}
}

type MemberCreateParams struct {
	Name       string `binding:"required,min=1,max=255" json:"name"`
	Email      string `binding:"omitempty,email"        json:"email"`
	Phone      string `binding:"max=32"                 json:"phone"`
	Address    string `binding:"max=500"                json:"address"`
	NationalID string `binding:"max=64"                 json:"nationalId"`
	Shares     int64  `binding:"required,min=1"         json:"shares"`
}

type MemberResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Address            string          `json:"address,omitempty"`
	NationalID         string          `json:"nationalId,omitempty"`
	Shares             int64           `json:"shares"`
	Status             string          `json:"status"`
	DateJoined         time.Time       `json:"dateJoined"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalBorrowings    decimal.Decimal `json:"totalBorrowings"`
	TotalRepayments    decimal.Decimal `json:"totalRepayments"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

func newMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		ID:                 m.ID,
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Address:            m.Address,
		NationalID:         m.NationalID,
		Shares:             m.Shares,
		Status:             string(m.Status),
		DateJoined:         m.DateJoined,
		TotalContributions: m.TotalContributions,
		TotalBorrowings:    m.TotalBorrowings,
		TotalRepayments:    m.TotalRepayments,
		OutstandingBalance: m.OutstandingBalance,
	}
}

// Create POST RouteGroup + MembersRoute. Регистрирует нового участника.
func (h *MembersHandler) Create(c *gin.Context) {
	var params MemberCreateParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	member, err := h.memberSvs.Register(ctx, service.RegisterMemberArgs{
		Name:       params.Name,
		Email:      params.Email,
		Phone:      params.Phone,
		Address:    params.Address,
		NationalID: params.NationalID,
		Shares:     params.Shares,
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"member": newMemberResponse(member)})
}

// Index GET RouteGroup + MembersRoute.
func (h *MembersHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	members, err := h.memberSvs.List(ctx)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	response := make([]MemberResponse, len(members))
	for i := range members {
		response[i] = newMemberResponse(&members[i])
	}
	c.JSON(http.StatusOK, gin.H{"members": response})
}

type EventCountsResponse struct {
	Contributions int `json:"contributions"`
	Borrowings    int `json:"borrowings"`
	Repayments    int `json:"repayments"`
}

type FinancialsResponse struct {
	OutstandingCapital  decimal.Decimal `json:"outstandingCapital"`
	OutstandingInterest decimal.Decimal `json:"outstandingInterest"`
	TotalOwing          decimal.Decimal `json:"totalOwing"`
}

// Summary GET RouteGroup + MemberSummaryRoute. Участник вместе с его журналом
// и производными показателями задолженности.
func (h *MembersHandler) Summary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, err := h.memberSvs.Summary(ctx, c.Param("id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}

	contributions := make([]ContributionResponse, len(summary.Contributions))
	for i := range summary.Contributions {
		contributions[i] = newContributionResponse(&summary.Contributions[i])
	}
	borrowings := make([]BorrowingResponse, len(summary.Borrowings))
	for i := range summary.Borrowings {
		borrowings[i] = newBorrowingResponse(&summary.Borrowings[i])
	}
	repayments := make([]RepaymentResponse, len(summary.Repayments))
	for i := range summary.Repayments {
		repayments[i] = newRepaymentResponse(&summary.Repayments[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"member":        newMemberResponse(&summary.Member),
		"contributions": contributions,
		"borrowings":    borrowings,
		"repayments":    repayments,
		"counts": EventCountsResponse{
			Contributions: summary.Counts.Contributions,
			Borrowings:    summary.Counts.Borrowings,
			Repayments:    summary.Counts.Repayments,
		},
		"financials": FinancialsResponse{
			OutstandingCapital:  summary.Financials.OutstandingCapital,
			OutstandingInterest: summary.Financials.OutstandingInterest,
			TotalOwing:          summary.Financials.TotalOwing,
		},
	})
}

// yearFromQuery берет год из query параметра year, по умолчанию текущий.
func yearFromQuery(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().UTC().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "year must be a number"})
		return 0, false
	}
	return year, true
}

// Schedule GET RouteGroup + MemberContributionsRoute. Сетка ожидаемых и
// фактических взносов участника за год.
func (h *MembersHandler) Schedule(c *gin.Context) {
	year, ok := yearFromQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	schedule, err := h.memberSvs.Schedule(ctx, c.Param("id"), year)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "schedule": schedule})
}

type historyGridResponse struct {
	Years map[int]map[domain.Period]ledger.Bucket `json:"years"`
}

// History GET RouteGroup + MemberHistoryRoute. Сетки займов и погашений
// участника, разложенные по календарным периодам.
func (h *MembersHandler) History(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	history, err := h.memberSvs.History(ctx, c.Param("id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"borrowings": historyGridResponse{Years: history.Borrowings},
		"repayments": historyGridResponse{Years: history.Repayments},
	})
}

// Reconcile POST RouteGroup + MemberReconcileRoute. Пересчитывает кэшированные
// агрегаты участника из журнала событий.
func (h *MembersHandler) Reconcile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	member, err := h.memberSvs.Reconcile(ctx, c.Param("id"))
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": newMemberResponse(member)})
}
