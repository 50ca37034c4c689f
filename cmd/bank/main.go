package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Irine-Juliet/Bank-CLI/internal/app/ledger"
	"github.com/Irine-Juliet/Bank-CLI/internal/config"
	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
	"github.com/Irine-Juliet/Bank-CLI/internal/infrastructure/database"
	accounts_pg "github.com/Irine-Juliet/Bank-CLI/internal/repository/accounts_repo/postgres"
	outbox_pg "github.com/Irine-Juliet/Bank-CLI/internal/repository/outbox_repo/postgres"
	transactions_pg "github.com/Irine-Juliet/Bank-CLI/internal/repository/transactions_repo/postgres"
)

// bankCLI is the interactive menu front end. It owns no business rules: it
// parses input, delegates to the ledger service, and renders typed errors as
// user-facing messages.
type bankCLI struct {
	service ledger.LedgerService
	logger  *zap.Logger
	scanner *bufio.Scanner
	current *domain.Account
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.OutputPaths = []string{cfg.CLILogPath}
	zapConfig.ErrorOutputPaths = []string{cfg.CLILogPath}

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(database.DBConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.Name,
		SSLMode:  cfg.DBConfig.SSLMode,
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		fmt.Println("Sorry! Something unexpected happened. Check the logs or contact the developer for assistance.")
		os.Exit(1)
	}
	defer db.Close()

	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.GetDBMigrationConnectionString())
	if err == nil {
		if upErr := m.Up(); upErr != nil && upErr != migrate.ErrNoChange {
			err = upErr
		}
	}
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		fmt.Println("Sorry! Something unexpected happened. Check the logs or contact the developer for assistance.")
		os.Exit(1)
	}
	logger.Debug("Loaded from bank database")

	service, err := ledger.NewLedgerService(
		context.Background(),
		db,
		accounts_pg.NewAccountRepository(),
		transactions_pg.NewTransactionRepository(),
		outbox_pg.NewOutboxRepository(),
		cfg.KafkaLedgerEventsTopic,
		logger.With(zap.String("component", "LedgerService")),
	)
	if err != nil {
		logger.Error("Failed to initialize ledger service", zap.Error(err))
		fmt.Println("Sorry! Something unexpected happened. Check the logs or contact the developer for assistance.")
		os.Exit(1)
	}

	cli := &bankCLI{
		service: service,
		logger:  logger,
		scanner: bufio.NewScanner(os.Stdin),
	}
	cli.run()
}

func (c *bankCLI) run() {
	for {
		c.displayMenu()
		choice, ok := c.readLine()
		if !ok {
			return
		}
		switch choice {
		case "1":
			c.openAccount()
		case "2":
			c.summary()
		case "3":
			c.selectAccount()
		case "4":
			c.addTransaction()
		case "5":
			c.listTransactions()
		case "6":
			c.interestAndFees()
		case "7":
			return
		}
	}
}

func (c *bankCLI) displayMenu() {
	selected := "None"
	if c.current != nil {
		selected = formatAccountLine(c.current.Kind, c.current.Number, c.current.Balance.StringFixed(2))
	}
	fmt.Printf("--------------------------------\n"+
		"Currently selected account: %s\n"+
		"Enter command\n"+
		"1: open account\n"+
		"2: summary\n"+
		"3: select account\n"+
		"4: add transaction\n"+
		"5: list transactions\n"+
		"6: interest and fees\n"+
		"7: quit\n"+
		">", selected)
}

func (c *bankCLI) openAccount() {
	fmt.Print("Type of account? (checking/savings)\n>")
	input, ok := c.readLine()
	if !ok {
		return
	}
	kind, err := domain.ParseKind(input)
	if err != nil {
		fmt.Println("Please enter either \"checking\" or \"savings\".")
		return
	}
	account, err := c.service.OpenAccount(c.ctx(), kind)
	if err != nil {
		c.unexpected(err)
		return
	}
	c.logger.Debug("Account opened", zap.Int64("account_number", account.Number))
}

func (c *bankCLI) summary() {
	summaries, err := c.service.Summary(c.ctx())
	if err != nil {
		c.unexpected(err)
		return
	}
	for _, s := range summaries {
		fmt.Println(formatSummaryLine(s))
	}
}

func (c *bankCLI) selectAccount() {
	fmt.Print("Enter account number\n>")
	input, ok := c.readLine()
	if !ok {
		return
	}
	number, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		fmt.Println("Please enter a valid account number.")
		return
	}
	account, err := c.service.GetAccount(c.ctx(), number)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			fmt.Println("That account does not exist.")
			return
		}
		c.unexpected(err)
		return
	}
	c.current = account
}

func (c *bankCLI) addTransaction() {
	if c.current == nil {
		fmt.Println("This command requires that you first select an account.")
		return
	}

	var amount decimal.Decimal
	for {
		fmt.Print("Amount?\n>")
		input, ok := c.readLine()
		if !ok {
			return
		}
		parsed, err := decimal.NewFromString(input)
		if err != nil {
			fmt.Println("Please try again with a valid dollar amount.")
			continue
		}
		amount = parsed
		break
	}

	var date time.Time
	for {
		fmt.Print("Date? (YYYY-MM-DD)\n>")
		input, ok := c.readLine()
		if !ok {
			return
		}
		parsed, err := domain.ParseDate(input)
		if err != nil {
			fmt.Println("Please try again with a valid date in the format YYYY-MM-DD.")
			continue
		}
		date = parsed
		break
	}

	account, _, err := c.service.AddTransaction(c.ctx(), c.current.Number, amount, date)
	if err != nil {
		c.renderLedgerError(err)
		return
	}
	c.current = account
	c.logger.Debug("Transaction added",
		zap.Int64("account_number", account.Number),
		zap.String("amount", amount.StringFixed(2)))
}

func (c *bankCLI) listTransactions() {
	if c.current == nil {
		fmt.Println("This command requires that you first select an account.")
		return
	}
	transactions, err := c.service.ListTransactions(c.ctx(), c.current.Number)
	if err != nil {
		c.unexpected(err)
		return
	}
	for _, t := range transactions {
		fmt.Printf("%s, $%s\n", t.Date.Format(domain.DateLayout), t.Amount.StringFixed(2))
	}
}

func (c *bankCLI) interestAndFees() {
	if c.current == nil {
		fmt.Println("This command requires that you first select an account.")
		return
	}
	account, _, err := c.service.ApplyInterestAndFees(c.ctx(), c.current.Number)
	if err != nil {
		c.renderLedgerError(err)
		return
	}
	c.current = account
	c.logger.Debug("Interest and fees applied", zap.Int64("account_number", account.Number))
}

// renderLedgerError turns the typed rule errors into the user-facing
// sentences; anything else falls through to the generic message.
func (c *bankCLI) renderLedgerError(err error) {
	var seqErr *domain.TransactionSequenceError
	var limitErr *domain.TransactionLimitError
	var overdrawErr *domain.OverdrawError
	switch {
	case errors.As(err, &overdrawErr):
		fmt.Println("This transaction could not be completed due to an insufficient account balance.")
	case errors.As(err, &limitErr):
		if limitErr.Limit == domain.LimitDaily {
			fmt.Println("This transaction could not be completed because this account already has 2 transactions in this day.")
		} else {
			fmt.Println("This transaction could not be completed because this account already has 5 transactions in this month.")
		}
	case errors.As(err, &seqErr):
		if seqErr.Accrual {
			fmt.Printf("Cannot apply interest and fees again in the month of %s.\n", seqErr.Latest.Format("January"))
		} else {
			fmt.Printf("New transactions must be from %s onward.\n", seqErr.Latest.Format(domain.DateLayout))
		}
	case errors.Is(err, domain.ErrAccountNotFound):
		fmt.Println("That account does not exist.")
	default:
		c.unexpected(err)
	}
}

func (c *bankCLI) unexpected(err error) {
	c.logger.Error("Unexpected error", zap.Error(err))
	fmt.Println("Sorry! Something unexpected happened. Check the logs or contact the developer for assistance.")
}

func (c *bankCLI) readLine() (string, bool) {
	if !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}

func (c *bankCLI) ctx() context.Context {
	return context.Background()
}

func formatAccountLine(kind domain.Kind, number int64, balance string) string {
	return fmt.Sprintf("%s#%s,\tbalance: $%s", kindDisplay(kind), ledger.FormatAccountNumber(number), balance)
}

func formatSummaryLine(s ledger.AccountSummary) string {
	return fmt.Sprintf("%s#%s,\tbalance: $%s", kindDisplay(s.Kind), s.AccountNumber, s.Balance)
}

func kindDisplay(kind domain.Kind) string {
	if kind == domain.KindSavings {
		return "Savings"
	}
	return "Checking"
}
