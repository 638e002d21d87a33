// Package bootstrap arma el libro de inventario según STORE_DRIVER para cmd/api y cmd/stockctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Ledger caso de uso listo para usar más la función que libera sus recursos.
type Ledger struct {
	UseCase *inventory.LedgerUseCase
	Close   func()
}

// OpenLedger conecta el almacenamiento, asegura el esquema y construye el LedgerUseCase.
// metrics puede ser nil.
func OpenLedger(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics inventory.Metrics) (*Ledger, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al detener el proceso")
		store := memory.New()
		uc := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), metrics, log)
		return &Ledger{UseCase: uc, Close: func() {}}, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		uc := inventory.NewLedgerUseCase(
			postgres.NewTxRunner(pool),
			postgres.NewProductRepository(pool),
			postgres.NewStockMovementRepository(pool),
			metrics, log,
		)
		return &Ledger{UseCase: uc, Close: pool.Close}, nil
	}
	return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
}
