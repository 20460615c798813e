package storage

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore keeps values in a shared kv_store table, one namespace per profile.
type PostgresStore struct {
	db        *sql.DB
	namespace string
}

// OpenPostgres connects and pings the database.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.L().Info("session database connection established")
	return db, nil
}

func NewPostgresStore(db *sql.DB, namespace string) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace}
}

// EnsureSchema brings the kv_store table up to the latest migration.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	return Migrate(ctx, p.db, Up)
}

func (p *PostgresStore) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("method", "Load"),
	)

	rows, err := p.db.QueryContext(ctx,
		`SELECT key, value FROM kv_store WHERE namespace = $1 AND key = ANY($2)`,
		p.namespace, pq.Array(keys),
	)
	if err != nil {
		log.Error("failed to query kv_store", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			log.Error("failed to scan kv_store row", zap.Error(err))
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (p *PostgresStore) Apply(ctx context.Context, ops ...Op) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("method", "Apply"),
		zap.Int("ops", len(ops)),
	)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	for _, op := range ops {
		if op.Delete {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM kv_store WHERE namespace = $1 AND key = $2`,
				p.namespace, op.Key,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO kv_store (namespace, key, value) VALUES ($1, $2, $3)
				 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
				p.namespace, op.Key, op.Value,
			)
		}
		if err != nil {
			log.Error("failed to apply op", zap.String("key", op.Key), zap.Error(err))
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit", zap.Error(err))
		return err
	}
	return nil
}
