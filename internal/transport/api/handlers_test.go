package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/fsdevblog/titans-ledger/internal/logger"
	"github.com/fsdevblog/titans-ledger/internal/repository"
	"github.com/fsdevblog/titans-ledger/internal/service"
	"github.com/fsdevblog/titans-ledger/internal/store"
	"github.com/fsdevblog/titans-ledger/internal/transport/api/testutils"
	"github.com/fsdevblog/titans-ledger/internal/transport/api/tokens"
)

const testAdminPassword = "super-secret"

type HandlersTestSuite struct {
	suite.Suite
	router    *gin.Engine
	store     *store.MemoryStore
	services  *service.AppServices
	jwtSecret []byte
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.store = store.NewMemoryStore()
	repos := repository.NewRegistry(s.store)
	s.services = service.Factory(repos, service.DefaultRates(), logger.New(os.Stdout))
	s.jwtSecret = []byte("super secret key")

	passwordHash, hashErr := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	s.Require().NoError(hashErr)

	router, err := New(RouterArgs{
		Logger:             logger.New(os.Stdout),
		MemberService:      s.services.MemberService,
		TransactionService: s.services.TransactionService,
		AccrualService:     s.services.AccrualService,
		ReportService:      s.services.ReportService,
		RatesService:       s.services.RatesService,
		AdminPasswordHash:  string(passwordHash),
		JWTSecretKey:       s.jwtSecret,
	})
	s.Require().NoError(err)
	s.router = router
}

func (s *HandlersTestSuite) postJSON(url string, payload string, opts ...func(*testutils.RequestOptions)) *http.Response {
	return testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    url,
		Body:   bytes.NewBufferString(payload),
	}, opts...)
}

func (s *HandlersTestSuite) get(url string, opts ...func(*testutils.RequestOptions)) *http.Response {
	return testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    url,
	}, opts...)
}

func (s *HandlersTestSuite) decodeBody(resp *http.Response, target any) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(body, target))
}

// createMember регистрирует участника через роутер и возвращает его id.
func (s *HandlersTestSuite) createMember(name string, shares int64) string {
	resp := s.postJSON(
		RouteGroup+MembersRoute,
		fmt.Sprintf(`{"name": %q, "shares": %d}`, name, shares),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var parsed struct {
		Member struct {
			ID string `json:"id"`
		} `json:"member"`
	}
	s.decodeBody(resp, &parsed)
	s.Require().NotEmpty(parsed.Member.ID)
	return parsed.Member.ID
}

func (s *HandlersTestSuite) TestCreateMember() {
	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "valid",
			payload:    `{"name": "Alice", "shares": 3}`,
			wantStatus: http.StatusCreated,
		}, {
			name:       "missing name",
			payload:    `{"shares": 3}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "zero shares",
			payload:    `{"name": "Bob"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "malformed json",
			payload:    `{"name": `,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			resp := s.postJSON(RouteGroup+MembersRoute, t.payload)
			defer func() { _ = resp.Body.Close() }()
			s.Equal(t.wantStatus, resp.StatusCode)
		})
	}
}

func (s *HandlersTestSuite) TestRecordContribution() {
	memberID := s.createMember("Alice", 2)

	resp := s.postJSON(
		RouteGroup+ContributionsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "2000", "period": "P3", "year": 2025, "assignedTo": "Bank"}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var parsed struct {
		Event struct {
			ID     string `json:"id"`
			Period string `json:"period"`
		} `json:"event"`
		Member struct {
			TotalContributions decimal.Decimal `json:"totalContributions"`
		} `json:"member"`
	}
	s.decodeBody(resp, &parsed)
	s.NotEmpty(parsed.Event.ID)
	s.Equal("P3", parsed.Event.Period)
	s.True(parsed.Member.TotalContributions.Equal(decimal.NewFromInt(2000)))
}

func (s *HandlersTestSuite) TestRecordContributionValidation() {
	memberID := s.createMember("Alice", 2)

	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "bad period",
			payload:    fmt.Sprintf(`{"memberId": %q, "amount": "100", "period": "P13", "year": 2025, "assignedTo": "Bank"}`, memberID),
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "unknown member",
			payload:    `{"memberId": "no-such-member", "amount": "100", "period": "P1", "year": 2025, "assignedTo": "Bank"}`,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "missing assignee",
			payload:    fmt.Sprintf(`{"memberId": %q, "amount": "100", "period": "P1", "year": 2025}`, memberID),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			resp := s.postJSON(RouteGroup+ContributionsRoute, t.payload)
			defer func() { _ = resp.Body.Close() }()
			s.Equal(t.wantStatus, resp.StatusCode)
		})
	}
}

func (s *HandlersTestSuite) TestBorrowingAndSummary() {
	memberID := s.createMember("Alice", 2)

	resp := s.postJSON(
		RouteGroup+BorrowingsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "5000", "period": "P2", "year": 2025, "moneySource": "Bank"}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	repayResp := s.postJSON(
		RouteGroup+RepaymentsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "1500", "period": "P3", "year": 2025}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, repayResp.StatusCode)
	_ = repayResp.Body.Close()

	summaryResp := s.get(RouteGroup + "/members/" + memberID + "/summary")
	s.Require().Equal(http.StatusOK, summaryResp.StatusCode)

	var parsed struct {
		Member struct {
			OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
		} `json:"member"`
		Borrowings []struct {
			Amount decimal.Decimal `json:"amount"`
		} `json:"borrowings"`
		Counts struct {
			Contributions int `json:"contributions"`
			Borrowings    int `json:"borrowings"`
			Repayments    int `json:"repayments"`
		} `json:"counts"`
		Financials struct {
			OutstandingCapital decimal.Decimal `json:"outstandingCapital"`
			TotalOwing         decimal.Decimal `json:"totalOwing"`
		} `json:"financials"`
	}
	s.decodeBody(summaryResp, &parsed)

	s.Len(parsed.Borrowings, 1)
	s.Equal(0, parsed.Counts.Contributions)
	s.Equal(1, parsed.Counts.Borrowings)
	s.Equal(1, parsed.Counts.Repayments)
	s.True(parsed.Member.OutstandingBalance.Equal(decimal.NewFromInt(3500)))
	s.True(parsed.Financials.OutstandingCapital.Equal(decimal.NewFromInt(3500)))
	s.True(parsed.Financials.TotalOwing.Equal(decimal.NewFromInt(3500)))
}

func (s *HandlersTestSuite) TestRecordBorrowingAggregateFailureBody() {
	memberID := s.createMember("Alice", 2)

	// событие запишется, а обновление агрегатов участника упадет
	s.store.FailNext("update", store.TypeMember, 1, errors.New("storage offline"))

	resp := s.postJSON(
		RouteGroup+BorrowingsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "5000", "period": "P2", "year": 2025, "moneySource": "Bank"}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	// тело должно остаться единственным JSON-документом
	var parsed struct {
		Event struct {
			ID string `json:"id"`
		} `json:"event"`
		MemberOutdated bool            `json:"memberOutdated"`
		Member         json.RawMessage `json:"member"`
	}
	s.decodeBody(resp, &parsed)

	s.NotEmpty(parsed.Event.ID)
	s.True(parsed.MemberOutdated)
	s.Nil(parsed.Member)
}

func (s *HandlersTestSuite) TestPeriodEndPartialFailureBody() {
	memberID := s.createMember("Alice", 2)

	resp := s.postJSON(
		RouteGroup+BorrowingsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "1000", "period": "P2", "year": 2025, "moneySource": "Bank"}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	token, tokenErr := tokens.GenerateAdminJWT(time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	s.store.FailNext("create", store.TypeInterestAccrual, 1, errors.New("storage offline"))

	runResp := s.postJSON(
		RouteGroup+AdminPeriodEndRoute,
		`{"period": "P2", "year": 2025}`,
		testutils.WithBearerToken(token),
	)
	s.Require().Equal(http.StatusOK, runResp.StatusCode)

	// сбои приходят в теле прогона, а не отдельным error-документом
	var parsed struct {
		Processed int `json:"processed"`
		Failures  []struct {
			MemberID string `json:"memberId"`
			Message  string `json:"message"`
		} `json:"failures"`
	}
	s.decodeBody(runResp, &parsed)

	s.Equal(0, parsed.Processed)
	s.Require().Len(parsed.Failures, 1)
	s.Equal(memberID, parsed.Failures[0].MemberID)
	s.NotEmpty(parsed.Failures[0].Message)
}

func (s *HandlersTestSuite) TestMemberSummaryNotFound() {
	resp := s.get(RouteGroup + "/members/no-such-member/summary")
	defer func() { _ = resp.Body.Close() }()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *HandlersTestSuite) TestContributionSchedule() {
	memberID := s.createMember("Alice", 2)

	resp := s.postJSON(
		RouteGroup+ContributionsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "2000", "period": "P1", "year": 2025, "assignedTo": "Bank"}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	scheduleResp := s.get(RouteGroup + "/members/" + memberID + "/contributions?year=2025")
	s.Require().Equal(http.StatusOK, scheduleResp.StatusCode)

	var parsed struct {
		Year     int `json:"year"`
		Schedule []struct {
			Period          string          `json:"Period"`
			Expected        decimal.Decimal `json:"Expected"`
			HasContribution bool            `json:"HasContribution"`
		} `json:"schedule"`
	}
	s.decodeBody(scheduleResp, &parsed)

	s.Equal(2025, parsed.Year)
	s.Require().Len(parsed.Schedule, 12)
	s.True(parsed.Schedule[0].HasContribution)
	s.True(parsed.Schedule[0].Expected.Equal(decimal.NewFromInt(2000)))
	s.False(parsed.Schedule[1].HasContribution)
}

func (s *HandlersTestSuite) TestReportSummary() {
	s.createMember("Alice", 2)
	s.createMember("Bob", 3)

	resp := s.get(RouteGroup + ReportSummaryRoute)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var parsed struct {
		TotalMembers int   `json:"totalMembers"`
		TotalShares  int64 `json:"totalShares"`
	}
	s.decodeBody(resp, &parsed)
	s.Equal(2, parsed.TotalMembers)
	s.Equal(int64(5), parsed.TotalShares)
}

func (s *HandlersTestSuite) TestReportBorrowingsBadRange() {
	resp := s.get(RouteGroup + ReportBorrowingsRoute + "?from=P5&to=P2&year=2025")
	defer func() { _ = resp.Body.Close() }()
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *HandlersTestSuite) TestContributionAllocationReport() {
	aliceID := s.createMember("Alice", 2)
	s.createMember("Bob", 1)

	resp := s.postJSON(
		RouteGroup+ContributionsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "1000", "period": "P4", "year": 2025, "assignedTo": "Bob"}`, aliceID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	reportResp := s.get(RouteGroup + ReportContributionsRoute + "?period=P4&year=2025")
	s.Require().Equal(http.StatusOK, reportResp.StatusCode)

	var parsed struct {
		Columns []string `json:"columns"`
		Rows    []struct {
			Name  string                     `json:"name"`
			Cells map[string]decimal.Decimal `json:"cells"`
		} `json:"rows"`
	}
	s.decodeBody(reportResp, &parsed)

	s.Equal([]string{"Bank", "Alice", "Bob"}, parsed.Columns)
	// строка вносителя плюс TOTALS
	s.Require().Len(parsed.Rows, 2)
	s.Equal("Alice", parsed.Rows[0].Name)
	s.True(parsed.Rows[0].Cells["Bob"].Equal(decimal.NewFromInt(1000)))
	s.Equal("TOTALS", parsed.Rows[1].Name)
}

func (s *HandlersTestSuite) TestAdminLogin() {
	cases := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "valid password",
			payload:    fmt.Sprintf(`{"password": %q}`, testAdminPassword),
			wantStatus: http.StatusOK,
		}, {
			name:       "wrong password",
			payload:    `{"password": "nope-nope"}`,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "empty password",
			payload:    `{}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			resp := s.postJSON(RouteGroup+AdminLoginRoute, t.payload)
			defer func() { _ = resp.Body.Close() }()
			s.Equal(t.wantStatus, resp.StatusCode)
		})
	}
}

func (s *HandlersTestSuite) TestAdminRoutesRequireToken() {
	resp := s.get(RouteGroup + AdminRatesRoute)
	_ = resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	badToken, err := tokens.GenerateAdminJWT(time.Hour, []byte("wrong secret"))
	s.Require().NoError(err)

	resp = s.get(RouteGroup+AdminRatesRoute, testutils.WithBearerToken(badToken))
	_ = resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlersTestSuite) TestAdminRates() {
	token, err := tokens.GenerateAdminJWT(time.Hour, s.jwtSecret)
	s.Require().NoError(err)

	resp := s.get(RouteGroup+AdminRatesRoute, testutils.WithBearerToken(token))
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var rates RatesResponse
	s.decodeBody(resp, &rates)
	s.True(rates.Monthly.Equal(decimal.NewFromInt(10)))
	s.True(rates.Annual.Equal(decimal.NewFromInt(120)))

	updateResp := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPut,
		URL:    RouteGroup + AdminRatesRoute,
		Body:   bytes.NewBufferString(`{"monthly": "5", "annual": "60"}`),
	}, testutils.WithBearerToken(token))
	s.Require().Equal(http.StatusOK, updateResp.StatusCode)

	s.decodeBody(updateResp, &rates)
	s.True(rates.Monthly.Equal(decimal.NewFromInt(5)))
}

func (s *HandlersTestSuite) TestPeriodEnd() {
	memberID := s.createMember("Alice", 2)

	resp := s.postJSON(
		RouteGroup+BorrowingsRoute,
		fmt.Sprintf(`{"memberId": %q, "amount": "1000", "period": "P2", "year": 2025, "moneySource": "Bank"}`, memberID),
	)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	token, tokenErr := tokens.GenerateAdminJWT(time.Hour, s.jwtSecret)
	s.Require().NoError(tokenErr)

	runResp := s.postJSON(
		RouteGroup+AdminPeriodEndRoute,
		`{"period": "P2", "year": 2025}`,
		testutils.WithBearerToken(token),
	)
	s.Require().Equal(http.StatusOK, runResp.StatusCode)

	var parsed struct {
		Processed int `json:"processed"`
		Entries   []struct {
			InterestAmount decimal.Decimal `json:"interestAmount"`
			NewBalance     decimal.Decimal `json:"newBalance"`
		} `json:"entries"`
		Failures []any `json:"failures"`
	}
	s.decodeBody(runResp, &parsed)

	s.Equal(1, parsed.Processed)
	s.Require().Len(parsed.Entries, 1)
	s.True(parsed.Entries[0].InterestAmount.Equal(decimal.NewFromInt(100)))
	s.True(parsed.Entries[0].NewBalance.Equal(decimal.NewFromInt(1100)))
	s.Empty(parsed.Failures)
}

func (s *HandlersTestSuite) TestPeriodEndRequiresToken() {
	resp := s.postJSON(RouteGroup+AdminPeriodEndRoute, `{"period": "P2", "year": 2025}`)
	defer func() { _ = resp.Body.Close() }()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}
