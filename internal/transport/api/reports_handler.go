package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/ledger"
)

type ReportsHandler struct {
	reportSvs ReportServicer
}

func NewReportsHandler(reportSvs ReportServicer) *ReportsHandler {
	return &ReportsHandler{
		reportSvs: reportSvs,
	}
}

// Summary GET RouteGroup + ReportSummaryRoute. Сводные показатели общества.
func (h *ReportsHandler) Summary(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	totals, err := h.reportSvs.Summary(ctx)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalMembers":       totals.TotalMembers,
		"totalShares":        totals.TotalShares,
		"totalContributions": totals.TotalContributions,
		"totalBorrowings":    totals.TotalBorrowings,
		"totalRepayments":    totals.TotalRepayments,
		"totalOutstanding":   totals.TotalOutstanding,
	})
}

// periodRangeFromQuery читает query параметры from и to, по умолчанию полный
// год P1..P12.
func periodRangeFromQuery(c *gin.Context) (domain.Period, domain.Period, bool) {
	fromRaw := c.DefaultQuery("from", "P1")
	toRaw := c.DefaultQuery("to", "P12")

	from, fromErr := domain.ParsePeriod(fromRaw)
	to, toErr := domain.ParsePeriod(toRaw)
	if fromErr != nil || toErr != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "period must be one of P1..P12"})
		return "", "", false
	}
	return from, to, true
}

type rangeRowResponse struct {
	MemberID   string                            `json:"memberId"`
	MemberName string                            `json:"memberName"`
	Cells      map[domain.Period]decimal.Decimal `json:"cells"`
}

type rangeMatrixResponse struct {
	Periods []domain.Period    `json:"periods"`
	Year    int                `json:"year"`
	Rows    []rangeRowResponse `json:"rows"`
}

func newRangeMatrixResponse(matrix *ledger.RangeMatrix, year int) rangeMatrixResponse {
	rows := make([]rangeRowResponse, len(matrix.Rows))
	for i, row := range matrix.Rows {
		rows[i] = rangeRowResponse{
			MemberID:   row.MemberID,
			MemberName: row.MemberName,
			Cells:      row.Cells,
		}
	}
	return rangeMatrixResponse{
		Periods: matrix.Periods,
		Year:    year,
		Rows:    rows,
	}
}

type rangeReportFn func(ctx context.Context, from, to domain.Period, year int) (*ledger.RangeMatrix, error)

func (h *ReportsHandler) rangeReport(c *gin.Context, report rangeReportFn) {
	from, to, ok := periodRangeFromQuery(c)
	if !ok {
		return
	}
	year, ok := yearFromQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	matrix, err := report(ctx, from, to, year)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRangeMatrixResponse(matrix, year))
}

// Borrowings GET RouteGroup + ReportBorrowingsRoute. Матрица займов по
// участникам и периодам.
func (h *ReportsHandler) Borrowings(c *gin.Context) {
	h.rangeReport(c, h.reportSvs.Borrowings)
}

// Repayments GET RouteGroup + ReportRepaymentsRoute.
func (h *ReportsHandler) Repayments(c *gin.Context) {
	h.rangeReport(c, h.reportSvs.Repayments)
}

// Interest GET RouteGroup + ReportInterestRoute.
func (h *ReportsHandler) Interest(c *gin.Context) {
	h.rangeReport(c, h.reportSvs.Interest)
}

type allocationRowResponse struct {
	Name  string                     `json:"name"`
	Cells map[string]decimal.Decimal `json:"cells"`
}

// Contributions GET RouteGroup + ReportContributionsRoute. Матрица
// распределения взносов одного периода: кто внес и кому назначено.
func (h *ReportsHandler) Contributions(c *gin.Context) {
	period, err := domain.ParsePeriod(c.Query("period"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "period must be one of P1..P12"})
		return
	}
	year, ok := yearFromQuery(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	matrix, reportErr := h.reportSvs.ContributionAllocations(ctx, period, year)
	if reportErr != nil {
		abortServiceError(c, reportErr)
		return
	}

	rows := make([]allocationRowResponse, len(matrix.Rows))
	for i, row := range matrix.Rows {
		rows[i] = allocationRowResponse{Name: row.Name, Cells: row.Cells}
	}
	c.JSON(http.StatusOK, gin.H{
		"period":  matrix.Period,
		"year":    matrix.Year,
		"columns": matrix.Columns,
		"rows":    rows,
	})
}
