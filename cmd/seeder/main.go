package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/app"
	"github.com/shrimpsizemoose/qcm/internal/questionbank"
)

func main() {
	dsn := flag.String("dsn", "file:etudiants.db?_foreign_keys=on", "database DSN (sqlite path or postgres:// URL)")
	bankPath := flag.String("bank", "", "optional TOML question bank replacing the built-in one")
	flag.Parse()

	bank, err := loadBank(*bankPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load question bank: %v", err)
	}

	st, err := app.NewStore(*dsn)
	if err != nil {
		logger.Error.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	seeded, err := bank.SeedAll(context.Background(), st)
	if err != nil {
		logger.Error.Fatalf("Failed to seed questions: %v", err)
	}

	for _, ch := range bank.Chapters {
		fmt.Printf("chapter %d: %d questions\n", ch.Number, len(ch.Questions))
	}
	fmt.Printf("%d chapter(s) seeded, %d already present\n", len(seeded), len(bank.Chapters)-len(seeded))
}

func loadBank(path string) (*questionbank.Bank, error) {
	if path == "" {
		return questionbank.Default()
	}
	return questionbank.Load(path)
}
