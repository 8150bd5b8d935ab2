package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/auth"
	"github.com/yogan/backoffice/internal/billing"
	"github.com/yogan/backoffice/internal/export"
	"github.com/yogan/backoffice/internal/models"
	"github.com/yogan/backoffice/internal/repository"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	customers   *repository.CustomerRepository
	invoices    *repository.InvoiceRepository
	deposits    *repository.DepositRepository
	authService *auth.Service
	statements  *export.StatementWriter
	cookieName  string
	secure      bool
	logger      *zap.Logger
	clock       func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	customers *repository.CustomerRepository,
	invoices *repository.InvoiceRepository,
	deposits *repository.DepositRepository,
	authService *auth.Service,
	statements *export.StatementWriter,
	cookieName string,
	secure bool,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		customers:   customers,
		invoices:    invoices,
		deposits:    deposits,
		authService: authService,
		statements:  statements,
		cookieName:  cookieName,
		secure:      secure,
		logger:      logger,
		clock:       time.Now,
	}
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "backoffice",
		"time":    h.clock().Format(time.RFC3339),
	})
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ShowLogin renders the login page
func (h *Handlers) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Email": ""})
}

// HandleLogin verifies credentials and issues the session cookie
func (h *Handlers) HandleLogin(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)

	now := h.clock()
	session, err := h.authService.Login(form.Email, form.Password, now)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.tmpl", gin.H{
				"Error": "Invalid email or password",
				"Email": form.Email,
			})
			return
		}
		h.serverError(c, err)
		return
	}

	maxAge := int(session.ExpiresAt.Sub(now).Seconds())
	c.SetCookie(h.cookieName, session.Token, maxAge, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// HandleLogout revokes the session and clears the cookie
func (h *Handlers) HandleLogout(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)
	if err := h.authService.Logout(token); err != nil {
		h.logger.Error("Failed to revoke session", zap.Error(err))
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
	c.Redirect(http.StatusFound, "/login")
}

// Home redirects to the dashboard
func (h *Handlers) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/dashboard")
}

// Dashboard renders an overview across all invoices
func (h *Handlers) Dashboard(c *gin.Context) {
	invoices, err := h.invoices.List()
	if err != nil {
		h.serverError(c, err)
		return
	}

	views, err := h.buildViews(invoices)
	if err != nil {
		h.serverError(c, err)
		return
	}

	outstanding := decimal.Zero
	overdueCount := 0
	for _, view := range views {
		if view.DueStatus == billing.DueStatusOverdue {
			overdueCount++
		}
		if view.AmountDue.IsPositive() {
			outstanding = outstanding.Add(view.AmountDue)
		}
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
		"User":         auth.CurrentUser(c),
		"InvoiceCount": len(views),
		"OverdueCount": overdueCount,
		"Outstanding":  outstanding,
	})
}

// SalesIndex redirects the sales shell to the invoice list
func (h *Handlers) SalesIndex(c *gin.Context) {
	c.Redirect(http.StatusFound, "/sales/invoices")
}

// ListInvoices renders the invoice list with derived amounts and statuses
func (h *Handlers) ListInvoices(c *gin.Context) {
	invoices, err := h.invoices.List()
	if err != nil {
		h.serverError(c, err)
		return
	}

	views, err := h.buildViews(invoices)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "invoices.tmpl", gin.H{
		"User":     auth.CurrentUser(c),
		"Invoices": views,
	})
}

// ShowInvoice renders one invoice with its deposit form
func (h *Handlers) ShowInvoice(c *gin.Context) {
	view, ok := h.invoiceView(c, c.Param("invoiceId"))
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "invoice.tmpl", gin.H{
		"User":    auth.CurrentUser(c),
		"Invoice": view,
		"Errors":  billing.FieldErrors{},
		"Form":    gin.H{"Amount": "", "DepositDate": "", "Note": ""},
	})
}

type depositForm struct {
	Amount      string `form:"amount"`
	DepositDate string `form:"depositDate"`
	Note        string `form:"note"`
}

// CreateDeposit records a deposit against an invoice. Validation failures
// re-render the invoice page with field-level messages and leave the
// invoice unchanged.
func (h *Handlers) CreateDeposit(c *gin.Context) {
	invoiceID := c.Param("invoiceId")

	var form depositForm
	_ = c.ShouldBind(&form)

	input, fieldErrs := billing.ParseDepositInput(form.Amount, form.DepositDate, form.Note)
	if fieldErrs.Any() {
		view, ok := h.invoiceView(c, invoiceID)
		if !ok {
			return
		}
		c.HTML(http.StatusUnprocessableEntity, "invoice.tmpl", gin.H{
			"User":    auth.CurrentUser(c),
			"Invoice": view,
			"Errors":  fieldErrs,
			"Form":    gin.H{"Amount": form.Amount, "DepositDate": form.DepositDate, "Note": form.Note},
		})
		return
	}

	// Existence check before the insert so a bad id is a 404, not a
	// foreign key failure
	if _, err := h.invoices.GetByID(invoiceID); err != nil {
		h.renderRepoError(c, err)
		return
	}

	if _, err := h.deposits.Create(invoiceID, input.Amount, input.DepositDate, input.Note); err != nil {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/sales/invoices/"+invoiceID)
}

// ExportInvoice streams the invoice statement workbook
func (h *Handlers) ExportInvoice(c *gin.Context) {
	view, ok := h.invoiceView(c, c.Param("invoiceId"))
	if !ok {
		return
	}

	data, err := h.statements.Write(view)
	if err != nil {
		h.serverError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.xlsx", view.InvoiceID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListCustomers renders the customer list
func (h *Handlers) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List()
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "customers.tmpl", gin.H{
		"User":      auth.CurrentUser(c),
		"Customers": customers,
	})
}

// NewCustomerForm renders the customer creation form
func (h *Handlers) NewCustomerForm(c *gin.Context) {
	c.HTML(http.StatusOK, "customer_new.tmpl", gin.H{
		"User":   auth.CurrentUser(c),
		"Errors": billing.FieldErrors{},
		"Form":   gin.H{"Name": "", "Email": ""},
	})
}

type customerForm struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

// CreateCustomer validates and creates a customer
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var form customerForm
	_ = c.ShouldBind(&form)

	input, fieldErrs := billing.ParseCustomerInput(form.Name, form.Email)
	if fieldErrs.Any() {
		c.HTML(http.StatusUnprocessableEntity, "customer_new.tmpl", gin.H{
			"User":   auth.CurrentUser(c),
			"Errors": fieldErrs,
			"Form":   gin.H{"Name": form.Name, "Email": form.Email},
		})
		return
	}

	customer, err := h.customers.Create(input.Name, input.Email)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/sales/customers/"+customer.ID)
}

// ShowCustomer renders a customer and their invoices with derived status
func (h *Handlers) ShowCustomer(c *gin.Context) {
	customer, err := h.customers.GetByID(c.Param("customerId"))
	if err != nil {
		h.renderRepoError(c, err)
		return
	}

	invoices, err := h.invoices.ListByCustomer(customer.ID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	views, err := h.buildViews(invoices)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "customer.tmpl", gin.H{
		"User":     auth.CurrentUser(c),
		"Customer": customer,
		"Invoices": views,
	})
}

// ShowDeposit renders one deposit with its invoice context
func (h *Handlers) ShowDeposit(c *gin.Context) {
	deposit, err := h.deposits.GetByID(c.Param("depositId"))
	if err != nil {
		h.renderRepoError(c, err)
		return
	}

	view, ok := h.invoiceView(c, deposit.InvoiceID)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "deposit.tmpl", gin.H{
		"User":    auth.CurrentUser(c),
		"Deposit": deposit,
		"Invoice": view,
	})
}

// GetInvoiceJSON returns the derived invoice view as JSON
func (h *Handlers) GetInvoiceJSON(c *gin.Context) {
	invoice, err := h.invoices.GetByID(c.Param("invoiceId"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	view, err := billing.BuildInvoiceView(invoice, h.clock())
	if err != nil {
		h.logger.Error("Invoice derivation failed", zap.String("invoice_id", invoice.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invoice data is invalid"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// invoiceView fetches an invoice and derives its view, writing the error
// response itself when something goes wrong
func (h *Handlers) invoiceView(c *gin.Context, invoiceID string) (*billing.InvoiceView, bool) {
	invoice, err := h.invoices.GetByID(invoiceID)
	if err != nil {
		h.renderRepoError(c, err)
		return nil, false
	}

	view, err := billing.BuildInvoiceView(invoice, h.clock())
	if err != nil {
		// Corrupt financial data must never render as a trustworthy status
		h.logger.Error("Invoice derivation failed", zap.String("invoice_id", invoice.ID), zap.Error(err))
		h.renderErrorPage(c, http.StatusInternalServerError, "This invoice's data is invalid and cannot be displayed.")
		return nil, false
	}
	return view, true
}

func (h *Handlers) buildViews(invoices []*models.Invoice) ([]*billing.InvoiceView, error) {
	now := h.clock()
	views := make([]*billing.InvoiceView, 0, len(invoices))
	for _, invoice := range invoices {
		view, err := billing.BuildInvoiceView(invoice, now)
		if err != nil {
			h.logger.Error("Invoice derivation failed", zap.String("invoice_id", invoice.ID), zap.Error(err))
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (h *Handlers) renderRepoError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		h.renderErrorPage(c, http.StatusNotFound, "Not found.")
		return
	}
	h.serverError(c, err)
}

func (h *Handlers) serverError(c *gin.Context, err error) {
	h.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	h.renderErrorPage(c, http.StatusInternalServerError, "Something went wrong. Sorry.")
}

func (h *Handlers) renderErrorPage(c *gin.Context, status int, message string) {
	c.HTML(status, "error.tmpl", gin.H{
		"Status":  status,
		"Message": message,
	})
}
