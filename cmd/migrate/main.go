package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/agromart/agromart-backend/pkg/config"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/migrate"
)

// gooseCommands are forwarded to goose unchanged.
var gooseCommands = map[string]bool{
	"up":     true,
	"down":   true,
	"redo":   true,
	"status": true,
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|redo|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	exitOn(context.Background(), logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	switch *cmd {
	case "create":
		if *name == "" {
			exitOn(ctx, logg, "create migration", fmt.Errorf("missing -name"))
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		exitOn(ctx, logg, "create migration", err)
		logg.Info(logg.WithField(ctx, "path", path), "migration created")
		return
	case "validate":
		exitOn(ctx, logg, "validate migrations", migrate.ValidateDir(*dir))
		logg.Info(ctx, "migrations valid")
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "connect database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	exitOn(ctx, logg, "open sql handle", err)

	switch {
	case gooseCommands[*cmd]:
		exitOn(ctx, logg, "goose "+*cmd, migrate.Run(ctx, sqlDB, *dir, *cmd))
	case *cmd == "version":
		if *version == "" {
			exitOn(ctx, logg, "migrate to version", fmt.Errorf("missing -version"))
		}
		exitOn(ctx, logg, "migrate to version", migrate.MigrateToVersion(ctx, sqlDB, *dir, *version))
	default:
		exitOn(ctx, logg, "dispatch command", fmt.Errorf("unknown -cmd value %q", *cmd))
	}
	logg.Info(ctx, "migrate finished")
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, step+" failed", err)
	os.Exit(1)
}
