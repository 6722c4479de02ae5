package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/transport/api/tokens"
)

const adminTokenTTL = 12 * time.Hour

type AdminHandler struct {
	accrualSvs        AccrualServicer
	ratesSvs          RatesServicer
	adminPasswordHash string
	jwtSecretKey      []byte
}

func NewAdminHandler(
	accrualSvs AccrualServicer,
	ratesSvs RatesServicer,
	adminPasswordHash string,
	jwtSecretKey []byte,
) *AdminHandler {
	return &AdminHandler{
		accrualSvs:        accrualSvs,
		ratesSvs:          ratesSvs,
		adminPasswordHash: adminPasswordHash,
		jwtSecretKey:      jwtSecretKey,
	}
}

type AdminLoginParams struct {
	Password string `binding:"required,min=1,max=255" json:"password"`
}

// Login POST RouteGroup + AdminLoginRoute. Аутентификация оператора по паролю,
// в ответ выдается токен для административных роутов.
func (h *AdminHandler) Login(c *gin.Context) {
	var params AdminLoginParams
	if !bindJSON(c, &params) {
		return
	}

	if h.adminPasswordHash == "" {
		_ = c.AbortWithError(http.StatusInternalServerError, errors.New("admin password is not configured")).
			SetType(gin.ErrorTypePrivate)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(params.Password)); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := tokens.GenerateAdminJWT(adminTokenTTL, h.jwtSecretKey)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type RatesResponse struct {
	Monthly decimal.Decimal `json:"monthly"`
	Annual  decimal.Decimal `json:"annual"`
}

// GetRates GET RouteGroup + AdminRatesRoute.
func (h *AdminHandler) GetRates(c *gin.Context) {
	rates := h.ratesSvs.Get()
	c.JSON(http.StatusOK, RatesResponse{Monthly: rates.Monthly, Annual: rates.Annual})
}

type RatesUpdateParams struct {
	Monthly decimal.Decimal `json:"monthly"`
	Annual  decimal.Decimal `json:"annual"`
}

// UpdateRates PUT RouteGroup + AdminRatesRoute. Ставки живут до перезапуска
// процесса, прошлые начисления не пересчитываются.
func (h *AdminHandler) UpdateRates(c *gin.Context) {
	var params RatesUpdateParams
	if !bindJSON(c, &params) {
		return
	}

	rates, err := h.ratesSvs.Update(domain.InterestRates{
		Monthly: params.Monthly,
		Annual:  params.Annual,
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RatesResponse{Monthly: rates.Monthly, Annual: rates.Annual})
}

type PeriodEndParams struct {
	Period string `binding:"required,period" json:"period"`
	Year   int    `binding:"required"        json:"year"`
}

type AccrualEntryResponse struct {
	MemberID       string          `json:"memberId"`
	MemberName     string          `json:"memberName"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	InterestAmount decimal.Decimal `json:"interestAmount"`
	NewBalance     decimal.Decimal `json:"newBalance"`
}

type BatchFailureResponse struct {
	MemberID string `json:"memberId"`
	Message  string `json:"message"`
}

// PeriodEnd POST RouteGroup + AdminPeriodEndRoute. Пакетное начисление
// процентов по текущей месячной ставке. Ответ 200 и при частичных сбоях:
// список failures несет участников, которых не удалось обработать.
func (h *AdminHandler) PeriodEnd(c *gin.Context) {
	var params PeriodEndParams
	if !bindJSON(c, &params) {
		return
	}

	// пакетный прогон не укладывается в таймаут одиночного запроса.
	ctx, cancel := context.WithTimeout(c, time.Minute)
	defer cancel()

	result, err := h.accrualSvs.RunPeriodEnd(
		ctx,
		domain.Period(params.Period),
		params.Year,
		h.ratesSvs.Get().Monthly,
	)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	entries := make([]AccrualEntryResponse, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = AccrualEntryResponse{
			MemberID:       e.MemberID,
			MemberName:     e.MemberName,
			Principal:      e.Principal,
			InterestRate:   e.InterestRate,
			InterestAmount: e.InterestAmount,
			NewBalance:     e.NewBalance,
		}
	}
	failures := make([]BatchFailureResponse, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = BatchFailureResponse{MemberID: f.MemberID, Message: f.Err.Error()}
	}
	if batchErr := result.BatchError(); batchErr != nil {
		_ = c.Error(batchErr).SetType(gin.ErrorTypePrivate)
	}

	c.JSON(http.StatusOK, gin.H{
		"period":    result.Period,
		"year":      result.Year,
		"processed": result.Processed,
		"entries":   entries,
		"failures":  failures,
	})
}
