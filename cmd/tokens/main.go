package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"vidver/internal/adapter/repo"
	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/sqlinline"
)

// Admin utility to credit purchased token packages to a user's wallet.
func main() {
	var (
		idFlag     string
		emailFlag  string
		amountFlag int
		noteFlag   string
	)

	flag.StringVar(&idFlag, "id", "", "user ID to credit (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to credit")
	flag.IntVar(&amountFlag, "amount", 0, "token amount to credit (must be positive)")
	flag.StringVar(&noteFlag, "note", "manual token purchase", "ledger description for the credit")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(strings.ToLower(emailFlag))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	if amountFlag <= 0 {
		exitWithError(errors.New("-amount must be positive"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "tokens").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	if userID == "" {
		lookupCtx, cancelLookup := context.WithTimeout(context.Background(), 5*time.Second)
		row := runner.QueryRow(lookupCtx, sqlinline.QSelectUserByEmail, email)
		var id, mail, name, hash, role string
		var createdAt time.Time
		err := row.Scan(&id, &mail, &name, &hash, &role, &createdAt)
		cancelLookup()
		if err != nil {
			exitWithError(fmt.Errorf("failed to load user by email: %w", err))
		}
		userID = id
	}

	wallets := repo.NewWalletRepository(runner)

	creditCtx, cancelCredit := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCredit()
	txn, err := wallets.Credit(creditCtx, userID, amountFlag, domain.TxnKindPurchase, strings.TrimSpace(noteFlag))
	if err != nil {
		exitWithError(fmt.Errorf("failed to credit wallet: %w", err))
	}

	fmt.Printf("Credited %d tokens to user %s\n", amountFlag, userID)
	fmt.Printf("balance_before=%d balance_after=%d transaction=%s\n", txn.BalanceBefore, txn.BalanceAfter, txn.ID)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
