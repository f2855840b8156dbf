package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"oficina-backend/config"
	"oficina-backend/services"
	"oficina-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Maximum run time")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Needs neither configuration nor database.
	if command == "gen-jwt-secret" {
		fmt.Println(utils.GenerateJWTSecret())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := config.ConnectDB(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := runCommand(ctx, command, db, log); err != nil {
		log.Fatal("Command failed", zap.String("command", command), zap.Error(err))
	}
}

func runCommand(ctx context.Context, command string, db *gorm.DB, log *zap.Logger) error {
	switch command {
	case "backfill-tenant":
		workshops := services.NewWorkshopService(db)
		def, err := workshops.EnsureDefault(ctx)
		if err != nil {
			return err
		}
		moved, err := workshops.AssignOrphans(ctx, def.ID)
		if err != nil {
			return err
		}
		for table, n := range moved {
			log.Info("rows assigned", zap.String("table", table), zap.Int64("rows", n))
		}
		log.Info("backfill finished", zap.String("oficina_id", def.ID.String()), zap.Int("tables", len(moved)))

	case "hash-passwords":
		n, err := services.NewUserService(db, log, nil).HashStoredPasswords(ctx)
		if err != nil {
			return err
		}
		log.Info("passwords hashed", zap.Int("converted", n))

	case "check-ledger":
		mismatches, err := services.NewReconcileService(db, log, nil).Check(ctx)
		if err != nil {
			return err
		}
		for _, m := range mismatches {
			fmt.Printf("%s\t%s\t%s\t%s\t%v\n", m.TenantID, m.OrderID, m.Problem, m.Total.StringFixed(2), m.Revenues)
		}
		log.Info("ledger checked", zap.Int("mismatches", len(mismatches)))

	case "fix-ledger":
		report, err := services.NewReconcileService(db, log, nil).Fix(ctx)
		if err != nil {
			return err
		}
		log.Info("ledger fixed",
			zap.Int("mismatches", report.Checked),
			zap.Int("created", report.Created),
			zap.Int("updated", report.Updated),
			zap.Int("deleted", report.Deleted),
		)

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: oficinactl [flags] <command>

Commands:
  backfill-tenant   assign rows without a workshop to "Oficina Principal"
  hash-passwords    bcrypt-hash stored plain-text passwords
  check-ledger      list work orders whose revenue entries are out of sync
  fix-ledger        repair every out-of-sync work order
  gen-jwt-secret    print a random signing secret

Flags:`)
	flag.PrintDefaults()
}
