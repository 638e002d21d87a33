// stockctl herramienta de operación: migraciones, conciliación, reporte PDF y emisión de tokens.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/domain"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "stockctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "stockctl",
		Usage: "operación del libro de inventario",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "aplica las migraciones pendientes en PostgreSQL",
				Action: migrateAction,
			},
			{
				Name:  "verify",
				Usage: "compara la cantidad de cada producto con la suma de su historial",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "verificar sólo este producto"},
				},
				Action: verifyAction,
			},
			{
				Name:  "report",
				Usage: "genera el reporte de existencias en PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "stock.pdf", Usage: "archivo destino"},
				},
				Action: reportAction,
			},
			{
				Name:  "token",
				Usage: "emite un JWT firmado con JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Required: true, Usage: "operador o servicio"},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Value: jwt.RoleOperator, Usage: "operator | viewer"},
					&cli.IntFlag{Name: "minutes", Usage: "vigencia; 0 = JWT_EXPIRATION_MINUTES"},
				},
				Action: tokenAction,
			},
		},
	}
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})
	return cfg, log, nil
}

func migrateAction(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return cli.Exit("migrate requiere STORE_DRIVER=postgres", 2)
	}
	pool, err := postgres.NewPool(c.Context, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.EnsureSchema(c.Context, pool, log)
}

func verifyAction(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ledger, err := bootstrap.OpenLedger(c.Context, cfg, log, nil)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if c.IsSet("id") {
		rec, err := ledger.UseCase.Verify(c.Context, c.Int64("id"))
		if err != nil && !errors.Is(err, domain.ErrInvariantViolation) {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%d\t%s\tcantidad=%d\thistorial=%d\n",
			rec.ProductID, rec.ProductName, rec.StoredQuantity, rec.LedgerQuantity)
		if err != nil {
			return cli.Exit("inconsistente", 3)
		}
		return nil
	}

	mismatches, err := ledger.UseCase.VerifyAll(c.Context)
	if err != nil {
		return err
	}
	for _, rec := range mismatches {
		fmt.Fprintf(c.App.Writer, "%d\t%s\tcantidad=%d\thistorial=%d\n",
			rec.ProductID, rec.ProductName, rec.StoredQuantity, rec.LedgerQuantity)
	}
	if len(mismatches) > 0 {
		return cli.Exit(fmt.Sprintf("%d productos inconsistentes", len(mismatches)), 3)
	}
	fmt.Fprintln(c.App.Writer, "libro consistente")
	return nil
}

func reportAction(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ledger, err := bootstrap.OpenLedger(c.Context, cfg, log, nil)
	if err != nil {
		return err
	}
	defer ledger.Close()

	dashboard := appanalytics.NewDashboardUseCase(ledger.UseCase)
	snap, err := dashboard.Load(c.Context)
	if err != nil {
		return err
	}
	pdf, err := infrapdf.NewStockReportGenerator(cfg.App.Name).
		Generate(c.Context, dashboard.Summarize(snap), dto.ProductsFromEntities(snap.Products))
	if err != nil {
		return err
	}
	out := c.String("output")
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", out, err)
	}
	log.Info().Str("file", out).Int("products", len(snap.Products)).Msg("reporte generado")
	return nil
}

func tokenAction(c *cli.Context) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	if !cfg.JWT.Enabled() {
		return cli.Exit("JWT_SECRET no está configurado", 2)
	}
	minutes := c.Int("minutes")
	if minutes <= 0 {
		minutes = cfg.JWT.Expiration
	}
	token, err := jwt.Generate(cfg.JWT.Secret, c.String("subject"), c.String("role"), cfg.JWT.Issuer, minutes)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
