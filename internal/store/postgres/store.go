package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/qcm/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(config *store.DBConfig) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logger.Debug.Println("Connected to postgres")

	return &PostgresStore{BaseStore: store.BaseStore{
		DB:        db,
		Converter: db.Rebind,
	}}, nil
}

func (s *PostgresStore) ApplyMigrations() error {
	return s.BaseStore.ApplyMigrations(store.Migrations, nil)
}
