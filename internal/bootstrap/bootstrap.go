// Package bootstrap arma el almacenamiento y los casos de uso a partir de la configuración.
// Lo comparten el servidor HTTP y la CLI de operación.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/maestral4ik/warehouse1/internal/application/auth"
	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/application/usecase"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
	"github.com/maestral4ik/warehouse1/internal/infrastructure/memory"
	"github.com/maestral4ik/warehouse1/internal/infrastructure/postgres"
	"github.com/maestral4ik/warehouse1/pkg/config"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// DevJWTSecret secreto usado en development cuando JWT_SECRET no está definido.
const DevJWTSecret = "dev-only-secret"

// Storage repositorios y runner de transacciones del driver configurado.
type Storage struct {
	TxRunner   inventory.TxRunner
	Items      repository.ItemRepository
	Movements  repository.MovementRepository
	Categories repository.CategoryRepository
	Audit      repository.AuditRepository
	Users      repository.UserRepository

	Pool *pgxpool.Pool // nil con driver memory
}

// Close libera el pool si existe.
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStorage conecta a PostgreSQL (aplicando migraciones si MIGRATE_ON_START) o crea el store en memoria.
// En memoria y development se siembra un admin (admin@local / admin1234).
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		if cfg.App.IsDevelopment() {
			if err := seedAdmin(store); err != nil {
				return nil, err
			}
			log.Warn().Str("email", "admin@local").Msg("store en memoria con usuario admin de desarrollo")
		}
		return &Storage{
			TxRunner:   store,
			Items:      store.Items(),
			Movements:  store.Movements(),
			Categories: store.Categories(),
			Audit:      store.Audit(),
			Users:      store.Users(),
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.MigrateOnStart {
			if err := postgres.Migrate(pool, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &Storage{
			TxRunner:   postgres.NewTxRunner(pool),
			Items:      postgres.NewItemRepository(pool),
			Movements:  postgres.NewMovementRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Audit:      postgres.NewAuditRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			Pool:       pool,
		}, nil
	}
	return nil, fmt.Errorf("driver %q no soportado", cfg.DB.Driver)
}

func seedAdmin(store *memory.Store) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	store.Seed(entity.User{
		ID:           uuid.New().String(),
		Email:        "admin@local",
		PasswordHash: string(hash),
		Name:         "Administrador",
		Role:         entity.RoleAdmin,
		Status:       entity.UserActive,
	})
	return nil
}

// UseCases casos de uso listos para el router o la CLI.
type UseCases struct {
	Auth       *auth.AuthUseCase
	Categories *usecase.CategoryUseCase
	Items      *usecase.ItemUseCase
	Movements  *inventory.MovementUseCase
	Reports    *inventory.ReportUseCase
	JWTSecret  string
}

// NewUseCases construye los casos de uso sobre st. publisher puede ser nil.
func NewUseCases(cfg *config.Config, st *Storage, publisher inventory.EventPublisher, log *logger.Logger) (*UseCases, error) {
	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}
	secret := cfg.JWT.Secret
	if secret == "" {
		secret = DevJWTSecret
		log.Warn().Msg("JWT_SECRET vacío, usando secreto de desarrollo")
	}
	rc := inventory.NewRecalculator(time.Now, loc, log.WithComponent("ledger"))
	return &UseCases{
		Auth: auth.NewAuthUseCase(st.Users, auth.JWTConfig{
			Secret:     secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		Categories: usecase.NewCategoryUseCase(st.Categories, st.Items),
		Items:      usecase.NewItemUseCase(st.TxRunner, st.Items, st.Categories, st.Audit, rc, log),
		Movements:  inventory.NewMovementUseCase(st.TxRunner, st.Items, st.Movements, publisher, rc, log),
		Reports:    inventory.NewReportUseCase(st.Categories, st.Items, st.Movements, log),
		JWTSecret:  secret,
	}, nil
}
