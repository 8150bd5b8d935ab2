// Command seed resets the demo user and loads sample sales data so every
// due status (due, overdue, paid, overpaid, due on receipt) has an
// example invoice.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/auth"
	"github.com/yogan/backoffice/internal/config"
	"github.com/yogan/backoffice/internal/repository"
	"github.com/yogan/backoffice/pkg/database"
	"github.com/yogan/backoffice/pkg/utils"
)

const (
	demoEmail    = "ryan@yogan.com"
	demoPassword = "ryaniscool"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      "info",
		OutputPath: "stdout",
		Format:     "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, logger)
	customerRepo := repository.NewCustomerRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	depositRepo := repository.NewDepositRepository(db, logger)

	// Recreate the demo user from scratch, like the original seed
	if err := userRepo.DeleteByEmail(demoEmail); err != nil {
		logger.Fatal("Failed to delete demo user", zap.Error(err))
	}
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		logger.Fatal("Failed to hash demo password", zap.Error(err))
	}
	user, err := userRepo.Create(demoEmail, hash)
	if err != nil {
		logger.Fatal("Failed to create demo user", zap.Error(err))
	}
	logger.Info("Demo user ready", zap.String("email", user.Email))

	if err := seedSales(customerRepo, invoiceRepo, depositRepo, logger); err != nil {
		logger.Fatal("Failed to seed sales data", zap.Error(err))
	}

	logger.Info("Seed complete")
}

func seedSales(
	customers *repository.CustomerRepository,
	invoices *repository.InvoiceRepository,
	deposits *repository.DepositRepository,
	logger *zap.Logger,
) error {
	// Idempotence guard: skip sample data when customers already exist
	if _, err := customers.First(); err == nil {
		logger.Info("Sales data already present, skipping")
		return nil
	}

	now := time.Now()
	day := func(offset int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	dayPtr := func(offset int) *time.Time {
		d := day(offset)
		return &d
	}
	dec := func(s string) decimal.Decimal {
		return decimal.RequireFromString(s)
	}

	santaMonica, err := customers.Create("Santa Monica", "accounts@santamonica.example")
	if err != nil {
		return err
	}
	stankonia, err := customers.Create("Stankonia", "billing@stankonia.example")
	if err != nil {
		return err
	}
	miaowville, err := customers.Create("Miaowville", "pay@miaowville.example")
	if err != nil {
		return err
	}

	// Due in the future
	dueSoon, err := invoices.Create(repository.InvoiceDraft{
		CustomerID:  santaMonica.ID,
		InvoiceDate: day(-5),
		DueDate:     dayPtr(25),
		LineItems: []repository.LineItemDraft{
			{Description: "Design consultation", Quantity: 2, UnitPrice: dec("50.00")},
			{Description: "Site hosting", Quantity: 1, UnitPrice: dec("25.00")},
		},
	})
	if err != nil {
		return err
	}
	if _, err := deposits.Create(dueSoon.ID, dec("30.00"), day(-2), "first installment"); err != nil {
		return err
	}

	// Overdue
	if _, err := invoices.Create(repository.InvoiceDraft{
		CustomerID:  stankonia.ID,
		InvoiceDate: day(-45),
		DueDate:     dayPtr(-15),
		LineItems: []repository.LineItemDraft{
			{Description: "Studio time", Quantity: 8, UnitPrice: dec("120.00")},
		},
	}); err != nil {
		return err
	}

	// Paid in full
	paid, err := invoices.Create(repository.InvoiceDraft{
		CustomerID:  miaowville.ID,
		InvoiceDate: day(-30),
		DueDate:     dayPtr(-10),
		LineItems: []repository.LineItemDraft{
			{Description: "Catnip subscription", Quantity: 12, UnitPrice: dec("8.25")},
		},
	})
	if err != nil {
		return err
	}
	if _, err := deposits.Create(paid.ID, dec("99.00"), day(-12), "paid in full"); err != nil {
		return err
	}

	// Due on receipt, no due date
	if _, err := invoices.Create(repository.InvoiceDraft{
		CustomerID:  santaMonica.ID,
		InvoiceDate: day(-1),
		LineItems: []repository.LineItemDraft{
			{Description: "Rush delivery", Quantity: 1, UnitPrice: dec("40.00")},
		},
	}); err != nil {
		return err
	}

	logger.Info("Sample sales data created")
	return nil
}
