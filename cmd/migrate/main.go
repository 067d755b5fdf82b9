// Command migrate manages the database schema.
//
//	migrate [-dir path] up|down|redo|status
//	migrate [-dir path] to <version>
//	migrate [-dir path] create <name>
//	migrate [-dir path] validate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tatame/tatame-backend/pkg/config"
	"github.com/tatame/tatame-backend/pkg/db"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", "", "migrations directory; empty uses the embedded set (create and validate default to "+migrate.DefaultDir+")")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-dir path] up|down|redo|status|to <version>|create <name>|validate")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if err := offline(cmd, args, *dir); err != errNeedsDB {
		exitOn(err)
		return
	}

	cfg, err := config.Load()
	exitOn(err)

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": cmd})

	client, err := db.New(ctx, cfg.DB, logg)
	exitOn(err)
	defer client.Close()

	sqlDB, err := client.DB().DB()
	exitOn(err)
	runner, err := migrate.NewRunner(sqlDB, *dir, logg)
	exitOn(err)

	switch cmd {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "redo":
		err = runner.Redo(ctx)
	case "status":
		err = runner.Status(ctx)
	case "to":
		if len(args) != 1 {
			exitOn(errors.New("to needs exactly one version"))
		}
		err = runner.To(ctx, args[0])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migrate.done")
}

var errNeedsDB = errors.New("needs database")

// offline handles the commands that only touch files.
func offline(cmd string, args []string, dir string) error {
	if dir == "" {
		dir = migrate.DefaultDir
	}
	switch cmd {
	case "create":
		if len(args) != 1 {
			return errors.New("create needs exactly one name")
		}
		path, err := migrate.Create(dir, args[0], time.Now())
		if err == nil {
			fmt.Println(path)
		}
		return err
	case "validate":
		return migrate.Validate(dir)
	}
	return errNeedsDB
}

func exitOn(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "migrate:", err)
	os.Exit(1)
}
