// Command migrate applies, reverts and inspects the portfolio schema.
//
//	migrate up [target]     apply pending migrations up to target (default: newest)
//	migrate down <target>   revert applied migrations above target ("base" for all)
//	migrate status          list migrations and whether they are applied
//	migrate verify          check the models against the live schema
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pmo-studio/engine/internal/metrics"
	"github.com/pmo-studio/engine/internal/migrations"
	"github.com/pmo-studio/engine/internal/models"
	"github.com/pmo-studio/engine/internal/schema"
	"github.com/pmo-studio/engine/pkg/config"
	"github.com/pmo-studio/engine/pkg/database"
	appErr "github.com/pmo-studio/engine/pkg/errors"
	"github.com/pmo-studio/engine/pkg/logger"
)

const usage = `usage: migrate <command> [args]

commands:
  up [target]     apply pending migrations up to target (default: newest)
  down <target>   revert applied migrations above target ("base" reverts all)
  status          list migrations and whether they are applied
  verify          check the models against the live schema
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.OptionsFromConfig(cfg, logger.Named("db")))
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	m := metrics.New()
	runner, err := migrations.NewRunner(db, migrations.All(), migrations.OptionsFromConfig(cfg, logger.Named("migrate"), m))
	if err != nil {
		log.Fatal("invalid migration registry", zap.Error(err))
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "up":
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		err = runner.Apply(ctx, target)
	case "down":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "down needs a target; use \"base\" to revert everything")
			os.Exit(2)
		}
		err = runner.Revert(ctx, args[0])
	case "status":
		err = printStatus(ctx, runner)
	case "verify":
		err = verify(ctx, runner, db)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if cfg.MetricsPushgatewayURL != "" && (cmd == "up" || cmd == "down") {
		if perr := m.Push(context.Background(), cfg.MetricsPushgatewayURL, "pmo_migrate"); perr != nil {
			log.Warn("failed to push migration metrics", zap.Error(perr))
		}
	}

	if err != nil {
		log.Error("migrate failed",
			zap.String("command", cmd),
			zap.String("code", string(appErr.CodeOf(err))),
			zap.Error(err),
		)
		os.Exit(1)
	}

	if cmd == "up" || cmd == "down" {
		current, cerr := runner.Current(ctx)
		if cerr != nil {
			log.Fatal("failed to read migration history", zap.Error(cerr))
		}
		log.Info("migrate completed", zap.String("command", cmd), zap.String("current", current))
	}
}

func printStatus(ctx context.Context, runner *migrations.Runner) error {
	st, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAPPLIED")
	for _, s := range st {
		fmt.Fprintf(w, "%s\t%s\t%t\n", s.ID, s.Name, s.Applied)
	}
	return w.Flush()
}

// verify only checks the models when the database is at the newest
// migration, since older schemas legitimately lack mapped columns.
func verify(ctx context.Context, runner *migrations.Runner, db *gorm.DB) error {
	current, err := runner.Current(ctx)
	if err != nil {
		return err
	}
	if current != migrations.Head() {
		return appErr.New(appErr.CodeInvalid, fmt.Sprintf("database is at %s, not at %s", current, migrations.Head()))
	}
	if err := schema.Verify(ctx, db, models.Head()...); err != nil {
		return err
	}
	snap, err := schema.Capture(ctx, db, schema.Tables...)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "schema %s verified, checksum %s\n", current, snap.Checksum())
	return nil
}
