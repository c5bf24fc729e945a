package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/idilsaglam/todoc/internal/auth"
	"github.com/idilsaglam/todoc/internal/cli"
	"github.com/idilsaglam/todoc/internal/config"
	"github.com/idilsaglam/todoc/internal/logging"
	"github.com/idilsaglam/todoc/internal/store/snapshot"
	"github.com/idilsaglam/todoc/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	backend := flag.String("backend", "", "backend base URL (overrides env and config)")
	plain := flag.Bool("plain", false, "one-shot list output instead of the interactive view")
	cached := flag.Bool("cached", false, "with -plain: render the last snapshot, no network")
	group := flag.Bool("group", false, "group plain output by pending/done")
	theme := flag.String("theme", "", "color theme: classic, neon, mono")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	// A .env in the working directory may carry TODOC_BACKEND / TODOC_TOKEN.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if *theme != "" {
		ui.SetTheme(*theme)
	} else {
		ui.SetTheme(cfg.Theme)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	// The interactive view owns the terminal; keep stderr logging quiet
	// there unless a log file is configured.
	interactive := args[0] == "ls" && !*plain
	logger, closeLog, err := logging.New(level, cfg.LogFile, interactive)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	var token string
	if ti, err := auth.GetToken(); err == nil && ti != nil {
		token = ti.Token
	}

	snapPath, err := snapshot.DefaultPath()
	if err != nil {
		snapPath = "" // no home dir: just skip the cache
	}

	code := cli.Run(args, cli.Options{
		Backend:      config.ResolveBackend(*backend, cfg),
		Token:        token,
		Plain:        *plain,
		Cached:       *cached,
		Group:        *group,
		SnapshotPath: snapPath,
		Logger:       logger,
	})
	closeLog() // os.Exit skips defers
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
