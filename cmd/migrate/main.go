package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Applies db/schema.sql to the configured database. The schema is written
// with idempotent statements so re-running is safe.
func main() {
	var schemaFlag string
	flag.StringVar(&schemaFlag, "schema", "db/schema.sql", "path to the schema file")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	schema, err := os.ReadFile(schemaFlag)
	if err != nil {
		exitWithError(fmt.Errorf("failed to read schema: %w", err))
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()
	db.SetConnMaxLifetime(time.Minute)

	if err := db.Ping(); err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}

	// Exec without arguments uses the simple protocol, which permits the
	// multi-statement schema file in one round trip.
	if _, err := db.Exec(string(schema)); err != nil {
		exitWithError(fmt.Errorf("failed to apply schema: %w", err))
	}

	fmt.Printf("schema %s applied\n", schemaFlag)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
