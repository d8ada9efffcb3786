package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maestral4ik/warehouse1/internal/bootstrap"
	"github.com/maestral4ik/warehouse1/internal/infrastructure/postgres"
	"github.com/maestral4ik/warehouse1/pkg/config"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operación del libro mensual de almacén",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newRecalcCmd(), newLedgerCmd(), newReportCmd())
	return root
}

// env configuración + logger para cada comando.
type env struct {
	cfg *config.Config
	log *logger.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes en PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if e.cfg.DB.Driver != config.DriverPostgres {
				return errors.New("migrate requiere DB_DRIVER=postgres")
			}
			pool, err := postgres.NewPool(cmd.Context(), e.cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()
			return postgres.Migrate(pool, e.log)
		},
	}
}

func newRecalcCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "recalc [item-id...]",
		Short: "Reconstruye cantidad, estado y fecha de baja desde el historial",
		Long:  "Sin argumentos recorre todos los items. Cada item se recalcula en su propia transacción.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, err := bootstrap.OpenStorage(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer st.Close()
			ucs, err := bootstrap.NewUseCases(e.cfg, st, nil, e.log)
			if err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				items, err := st.Items.ListAll(ctx)
				if err != nil {
					return err
				}
				for _, it := range items {
					ids = append(ids, it.ID)
				}
			}

			var changed atomic.Int64
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for _, id := range ids {
				id := id
				g.Go(func() error {
					ok, err := ucs.Movements.RecalculateItem(gctx, id)
					if err != nil {
						return fmt.Errorf("item %s: %w", id, err)
					}
					if ok {
						changed.Add(1)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			e.log.Info().Int("items", len(ids)).Int64("changed", changed.Load()).Msg("recálculo terminado")
			fmt.Fprintf(cmd.OutOrStdout(), "%d items revisados, %d corregidos\n", len(ids), changed.Load())
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "items recalculados en paralelo")
	return cmd
}

func newLedgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <item-id> <YYYY-MM>",
		Short: "Imprime el saldo mensual de un item en JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(cmd, func(ucs *bootstrap.UseCases) (any, error) {
				return ucs.Reports.ItemLedger(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <YYYY-MM>",
		Short: "Imprime el libro mensual completo en JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUseCases(cmd, func(ucs *bootstrap.UseCases) (any, error) {
				return ucs.Reports.MonthlyReport(cmd.Context(), args[0])
			})
		},
	}
}

// withUseCases abre el almacenamiento, ejecuta fn e imprime su resultado como JSON indentado.
func withUseCases(cmd *cobra.Command, fn func(*bootstrap.UseCases) (any, error)) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	st, err := bootstrap.OpenStorage(cmd.Context(), e.cfg, e.log)
	if err != nil {
		return err
	}
	defer st.Close()
	ucs, err := bootstrap.NewUseCases(e.cfg, st, nil, e.log)
	if err != nil {
		return err
	}
	out, err := fn(ucs)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
