package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signtusk/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewDatabase(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	// Build PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := &Database{
		DB:     db,
		logger: logger,
	}

	// Run migrations
	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func (d *Database) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id VARCHAR(64) PRIMARY KEY,
			owner_identity VARCHAR(255) NOT NULL,
			original_digest VARCHAR(64) NOT NULL,
			signed_digest VARCHAR(64) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL,
			required_signer_count INT NOT NULL,
			ordering VARCHAR(20) NOT NULL DEFAULT 'parallel',
			title TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			signer_label TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS signers (
			document_id VARCHAR(64) NOT NULL REFERENCES documents(id),
			identity VARCHAR(255) NOT NULL,
			sign_order INT NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			PRIMARY KEY (document_id, identity)
		);`,

		`CREATE TABLE IF NOT EXISTS signatures (
			id SERIAL PRIMARY KEY,
			document_id VARCHAR(64) NOT NULL REFERENCES documents(id),
			signer_identity VARCHAR(255) NOT NULL,
			digest_signed VARCHAR(64) NOT NULL,
			signature_value TEXT NOT NULL,
			signed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (document_id, signer_identity)
		);`,

		`CREATE TABLE IF NOT EXISTS audit_entries (
			id SERIAL PRIMARY KEY,
			document_id VARCHAR(64) NOT NULL,
			actor_identity VARCHAR(255) NOT NULL,
			action VARCHAR(50) NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS signer_keys (
			identity VARCHAR(255) PRIMARY KEY,
			public_key TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE INDEX IF NOT EXISTS idx_documents_original_digest ON documents(original_digest);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_signed_digest ON documents(signed_digest);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_identity);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_document ON audit_entries(document_id);`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

var Module = fx.Module("database",
	fx.Provide(NewDatabase),
)
