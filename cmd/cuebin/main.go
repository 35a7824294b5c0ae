package main

import (
	"fmt"
	"os"

	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/db"
	"github.com/hpungsan/cuebin/internal/logger"
	"github.com/hpungsan/cuebin/internal/mcp"
	"github.com/hpungsan/cuebin/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"tree": true, "views": true, "view": true,
	"actor": true, "scene": true, "bin": true, "media": true, "take": true,
	"delete": true, "snapshot": true, "export": true, "import": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return isHelpOrVersion()
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
             _     _
   ___ _   _| |__ (_)_ __
  / __| | | | '_ \| | '_ \
 | (__| |_| | |_) | | | | |
  \___|\__,_|_.__/|_|_| |_|

  Voice and audio cue organizer

  Usage: cuebin <command> [options]
         cuebin --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatal("could not determine base directory: %v", err)
	}

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fatal("failed to create logger: %v", err)
	}
	defer log.Sync()

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	lib := ops.NewLibrary(cfg, baseDir, log)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(database, cfg, lib, log)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'cuebin --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, lib, log, Version); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
