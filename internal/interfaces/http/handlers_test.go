package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/auth"
	"github.com/yogan/backoffice/internal/export"
	"github.com/yogan/backoffice/internal/repository"
	"github.com/yogan/backoffice/pkg/database"
)

type testApp struct {
	server    *Server
	customers *repository.CustomerRepository
	invoices  *repository.InvoiceRepository
	deposits  *repository.DepositRepository
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.Run("../../../migrations"))

	userRepo := repository.NewUserRepository(db, logger)
	sessionRepo := repository.NewSessionRepository(db, logger)
	customerRepo := repository.NewCustomerRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	depositRepo := repository.NewDepositRepository(db, logger)

	hash, err := auth.HashPassword("ryaniscool")
	require.NoError(t, err)
	_, err = userRepo.Create("ryan@yogan.com", hash)
	require.NoError(t, err)

	authService := auth.NewService(userRepo, sessionRepo, time.Hour, logger)
	statements := export.NewStatementWriter(logger)

	handlers := NewHandlers(
		customerRepo, invoiceRepo, depositRepo,
		authService, statements,
		"backoffice_session", false, logger,
	)

	server := NewServer(ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		TemplatesDir: "../../../web/templates",
		CookieName:   "backoffice_session",
	}, handlers, authService, logger)

	return &testApp{
		server:    server,
		customers: customerRepo,
		invoices:  invoiceRepo,
		deposits:  depositRepo,
	}
}

// seedInvoice creates a customer with one future-dated invoice for $125
func (app *testApp) seedInvoice(t *testing.T) string {
	t.Helper()

	customer, err := app.customers.Create("Santa Monica", "sm@example.com")
	require.NoError(t, err)

	due := time.Now().AddDate(0, 1, 0)
	invoice, err := app.invoices.Create(repository.InvoiceDraft{
		CustomerID:  customer.ID,
		InvoiceDate: time.Now().AddDate(0, 0, -5),
		DueDate:     &due,
		LineItems: []repository.LineItemDraft{
			{Description: "Design work", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
			{Description: "Hosting", Quantity: 1, UnitPrice: decimal.RequireFromString("25.00")},
		},
	})
	require.NoError(t, err)
	return invoice.ID
}

func (app *testApp) do(t *testing.T, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	app.server.Router().ServeHTTP(rec, req)
	return rec
}

func (app *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := app.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"ryan@yogan.com"},
		"password": {"ryaniscool"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "backoffice_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestHealthCheck(t *testing.T) {
	app := setupApp(t)

	rec := app.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAnonymousAccess(t *testing.T) {
	app := setupApp(t)

	rec := app.do(t, http.MethodGet, "/sales/invoices", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.do(t, http.MethodGet, "/api/v1/invoices/some-id", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	app := setupApp(t)

	t.Run("wrong password re-renders with message", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/login", url.Values{
			"email":    {"ryan@yogan.com"},
			"password": {"guess"},
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
	})

	t.Run("good credentials issue a session cookie", func(t *testing.T) {
		cookie := app.login(t)
		assert.True(t, cookie.HttpOnly)

		rec := app.do(t, http.MethodGet, "/dashboard", nil, cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ryan@yogan.com")
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		cookie := app.login(t)
		rec := app.do(t, http.MethodPost, "/logout", nil, cookie)
		assert.Equal(t, http.StatusFound, rec.Code)

		rec = app.do(t, http.MethodGet, "/dashboard", nil, cookie)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}

func TestShowInvoice(t *testing.T) {
	app := setupApp(t)
	invoiceID := app.seedInvoice(t)
	cookie := app.login(t)

	t.Run("renders derived amounts", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/sales/invoices/"+invoiceID, nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "Santa Monica")
		assert.Contains(t, body, "$125.00")
		assert.Contains(t, body, "None yet")
	})

	t.Run("unknown invoice is a 404", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/sales/invoices/no-such-id", nil, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateDeposit(t *testing.T) {
	app := setupApp(t)
	invoiceID := app.seedInvoice(t)
	cookie := app.login(t)

	t.Run("negative amount is rejected and invoice unchanged", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/sales/invoices/"+invoiceID+"/deposits", url.Values{
			"amount":      {"-5"},
			"depositDate": {"2024-03-10"},
		}, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Amount must be a positive number")

		invoice, err := app.invoices.GetByID(invoiceID)
		require.NoError(t, err)
		assert.Empty(t, invoice.Deposits)
	})

	t.Run("bad date is rejected and invoice unchanged", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/sales/invoices/"+invoiceID+"/deposits", url.Values{
			"amount":      {"10.00"},
			"depositDate": {"not-a-date"},
		}, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter a valid date")

		invoice, err := app.invoices.GetByID(invoiceID)
		require.NoError(t, err)
		assert.Empty(t, invoice.Deposits)
	})

	t.Run("valid deposit is recorded", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/sales/invoices/"+invoiceID+"/deposits", url.Values{
			"amount":      {"25.00"},
			"depositDate": {"2024-03-10"},
			"note":        {"check #112"},
		}, cookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/sales/invoices/"+invoiceID, rec.Header().Get("Location"))

		invoice, err := app.invoices.GetByID(invoiceID)
		require.NoError(t, err)
		require.Len(t, invoice.Deposits, 1)
		assert.True(t, invoice.Deposits[0].Amount.Equal(decimal.RequireFromString("25.00")))
	})

	t.Run("deposit against unknown invoice is a 404", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/sales/invoices/no-such-id/deposits", url.Values{
			"amount":      {"25.00"},
			"depositDate": {"2024-03-10"},
		}, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateCustomer(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t)

	t.Run("validation failures re-render the form", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/sales/customers", url.Values{
			"name":  {""},
			"email": {"not-an-email"},
		}, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Please enter a valid name")
		assert.Contains(t, body, "Please enter a valid email")
	})

	t.Run("valid customer redirects to its page", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/sales/customers", url.Values{
			"name":  {"Stankonia"},
			"email": {"billing@stankonia.example"},
		}, cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		location := rec.Header().Get("Location")
		assert.True(t, strings.HasPrefix(location, "/sales/customers/"))

		rec = app.do(t, http.MethodGet, location, nil, cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Stankonia")
	})
}

func TestInvoiceJSON(t *testing.T) {
	app := setupApp(t)
	invoiceID := app.seedInvoice(t)
	cookie := app.login(t)

	rec := app.do(t, http.MethodGet, "/api/v1/invoices/"+invoiceID, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "due", view["due_status"])
	assert.Equal(t, "Santa Monica", view["customer_name"])

	rec = app.do(t, http.MethodGet, "/api/v1/invoices/no-such-id", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportInvoice(t *testing.T) {
	app := setupApp(t)
	invoiceID := app.seedInvoice(t)
	cookie := app.login(t)

	rec := app.do(t, http.MethodGet, "/sales/invoices/"+invoiceID+"/export", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestSalesIndexRedirects(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t)

	rec := app.do(t, http.MethodGet, "/sales", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/sales/invoices", rec.Header().Get("Location"))
}
