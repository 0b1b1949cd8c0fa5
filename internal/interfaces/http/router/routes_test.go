package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appidentity "github.com/farmledger/backend/internal/application/identity"
	appledger "github.com/farmledger/backend/internal/application/ledger"
	"github.com/farmledger/backend/internal/infrastructure/auth"
	"github.com/farmledger/backend/internal/infrastructure/cache"
	"github.com/farmledger/backend/internal/infrastructure/config"
	"github.com/farmledger/backend/internal/infrastructure/persistence"
	"github.com/farmledger/backend/internal/interfaces/http/dto"
	"github.com/farmledger/backend/internal/interfaces/http/handler"
	"github.com/farmledger/backend/internal/interfaces/http/middleware"
	"github.com/farmledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	log := zaptest.NewLogger(t)
	deps := appledger.Deps{UoW: persistence.NewGormUnitOfWork(db.DB), Logger: log}
	reconciler := appledger.NewBudgetReconciler(deps)
	deps.Hooks = appledger.PostCommitHooks{reconciler}

	categories := appledger.NewCategoryService(deps)
	require.NoError(t, categories.SeedDefaults(context.Background()))

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                 "api-test-secret-with-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "farmledger-test",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := appidentity.NewAuthService(
		persistence.NewGormFarmerRepository(db.DB), tokens, blacklist,
		appidentity.DefaultAuthServiceConfig(), log,
	)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	requireAuth := middleware.JWTAuth(middleware.JWTConfig{Tokens: tokens, Blacklist: blacklist, Logger: log})
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.BodyLimit(1<<20))

	r := router.NewRouter(engine)
	r.Register(router.SystemRoutes(handler.NewSystemHandler(db, "Farm Ledger API", "test"))).
		Register(router.AuthRoutes(handler.NewAuthHandler(authService), requireAuth)).
		Register(router.FinanceRoutes(router.FinanceHandlers{
			Categories:   handler.NewCategoryHandler(categories),
			Accounts:     handler.NewAccountHandler(appledger.NewAccountService(deps)),
			Transactions: handler.NewTransactionHandler(appledger.NewTransactionService(deps), nil),
			Transfers:    handler.NewTransferHandler(appledger.NewTransferService(deps)),
			Budgets:      handler.NewBudgetHandler(appledger.NewBudgetService(deps, reconciler)),
			Crops:        handler.NewCropHandler(appledger.NewCropService(deps)),
			Goals:        handler.NewGoalHandler(appledger.NewGoalService(deps)),
			Dashboard:    handler.NewDashboardHandler(appledger.NewDashboardService(deps)),
		},
			requireAuth,
			middleware.Idempotency(store, time.Hour),
		))
	r.Setup()

	return &api{t: t, engine: engine}
}

func (a *api) do(method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *api) login(username string) {
	a.t.Helper()
	creds := map[string]string{"username": username, "password": "harvest-2024"}
	w, _ := a.do(http.MethodPost, "/auth/register", creds)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/auth/login", creds)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var tokens appidentity.TokenResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &tokens))
	a.token = tokens.AccessToken
}

func (a *api) createAccount(name, opening string) appledger.AccountResponse {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/finance/accounts", map[string]any{
		"account_name":    name,
		"account_type":    "SAVINGS",
		"opening_balance": opening,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var acc appledger.AccountResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &acc))
	return acc
}

func (a *api) category(kind, name string) string {
	a.t.Helper()
	_, env := a.do(http.MethodGet, "/finance/categories?kind="+kind, nil)
	var cats []appledger.CategoryResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &cats))
	for _, c := range cats {
		if c.Name == name {
			return c.ID.String()
		}
	}
	a.t.Fatalf("category %s/%s not seeded", kind, name)
	return ""
}

func TestAPI_Health(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"database":"ok"`)
}

func TestAPI_FinanceRequiresToken(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/finance/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)

	a.token = "not-a-jwt"
	w, env = a.do(http.MethodGet, "/finance/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, env.Error.Code)
}

func TestAPI_ValidationDetails(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")

	w, env := a.do(http.MethodPost, "/finance/accounts", map[string]any{"account_type": "PIGGYBANK"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	fields := make(map[string]bool)
	for _, d := range env.Error.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["account_name"])
	assert.True(t, fields["account_type"])
}

func TestAPI_MalformedIDIsBadRequest(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")

	w, env := a.do(http.MethodGet, "/finance/accounts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)
}

func TestAPI_ExpenseMovesBalanceAndPaginates(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")
	acc := a.createAccount("Village Bank", "1000")
	seeds := a.category("EXPENSE", "Seeds")

	for i := 0; i < 3; i++ {
		w, _ := a.do(http.MethodPost, "/finance/transactions", map[string]any{
			"account_id":       acc.ID,
			"transaction_type": "EXPENSE",
			"amount":           "100.50",
			"description":      "Paddy seed",
			"category_id":      seeds,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	_, env := a.do(http.MethodGet, "/finance/accounts/"+acc.ID.String(), nil)
	var got appledger.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.CurrentBalance.Equal(decimal.RequireFromString("698.50")), got.CurrentBalance.String())

	w, env := a.do(http.MethodGet, "/finance/transactions?page_size=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
	var items []appledger.TransactionResponse
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)

	w, env = a.do(http.MethodGet, "/finance/accounts/"+acc.ID.String()+"/verify", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"consistent":true`)
}

func TestAPI_TransferInsufficientFunds(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")
	from := a.createAccount("Cash Box", "50")
	to := a.createAccount("Village Bank", "0")

	w, env := a.do(http.MethodPost, "/finance/transfers", map[string]any{
		"from_account_id": from.ID,
		"to_account_id":   to.ID,
		"amount":          "75",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeInsufficientFunds, env.Error.Code)

	_, env = a.do(http.MethodGet, "/finance/accounts/"+from.ID.String(), nil)
	var got appledger.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(50)))
}

func TestAPI_IdempotencyKeyReplay(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")
	from := a.createAccount("Cash Box", "500")
	to := a.createAccount("Village Bank", "0")
	body := map[string]any{
		"from_account_id": from.ID,
		"to_account_id":   to.ID,
		"amount":          "100",
	}

	w, _ := a.do(http.MethodPost, "/finance/transfers", body, middleware.IdempotencyKeyHeader, "transfer-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/finance/transfers", body, middleware.IdempotencyKeyHeader, "transfer-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, env.Error.Code)

	_, env = a.do(http.MethodGet, "/finance/accounts/"+from.ID.String(), nil)
	var got appledger.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.CurrentBalance.Equal(decimal.NewFromInt(400)), "replay must not move money twice")
}

func TestAPI_OtherFarmersDataIsNotFound(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")
	acc := a.createAccount("Village Bank", "100")

	a.token = ""
	a.login("ramesh")
	w, env := a.do(http.MethodGet, "/finance/accounts/"+acc.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")

	w, _ := a.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := a.do(http.MethodGet, "/finance/accounts", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, env.Error.Code)
}

func TestAPI_DeleteReturnsNoContent(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")

	w, env := a.do(http.MethodPost, "/finance/goals", map[string]any{
		"goal_name":     "Tractor",
		"goal_type":     "EQUIPMENT",
		"target_amount": "250000",
		"target_date":   time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var goal appledger.GoalResponse
	require.NoError(t, json.Unmarshal(env.Data, &goal))

	w, _ = a.do(http.MethodDelete, "/finance/goals/"+goal.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = a.do(http.MethodGet, "/finance/goals/"+goal.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ReceiptRoutesAbsentWithoutStorage(t *testing.T) {
	a := newAPI(t)
	a.login("sunita")

	w, _ := a.do(http.MethodGet, "/finance/transactions/"+"00000000-0000-0000-0000-000000000001"+"/receipt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
