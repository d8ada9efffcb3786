package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
)

var tracer = otel.Tracer("warehouse/postgres")

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La serialización por item la da Items.GetForUpdate.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.isolation", string(pgx.ReadCommitted))))
	defer span.End()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin")
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, ReposFor(tx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollback")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReposFor arma los repositorios sobre q (pool o tx).
func ReposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Items:      NewItemRepository(q),
		Movements:  NewMovementRepository(q),
		Categories: NewCategoryRepository(q),
		Audit:      NewAuditRepository(q),
	}
}
