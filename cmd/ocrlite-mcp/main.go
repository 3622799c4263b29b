package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/ocrlite-mcp/internal/config"
	"github.com/ironsheep/ocrlite-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("OCRLITE_CONFIG")

	// Handle --version, --help and --config
	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--version", "-v", "version":
			fmt.Printf("ocrlite-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "--config", "-c":
			if i+1 >= len(os.Args) {
				fmt.Fprintln(os.Stderr, "--config requires a path")
				os.Exit(2)
			}
			i++
			configPath = os.Args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q (see --help)\n", os.Args[i])
			os.Exit(2)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}

	// Log to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("OCR MCP server starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("ocrlite-mcp - MCP server for OCR post-detection processing")
	fmt.Println()
	fmt.Println("Usage: ocrlite-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH  Load settings from a YAML file")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from ./.env):")
	fmt.Println("  OCRLITE_CONFIG=PATH             YAML config file")
	fmt.Println("  OCRLITE_LOG_LEVEL=debug         debug, info, warn or error")
	fmt.Println("  OCRLITE_PADDING=50              Border added before detection")
	fmt.Println("  OCRLITE_MAX_SIDE_LEN=1024       Longer side of the detector input")
	fmt.Println("  OCRLITE_BOX_SCORE_THRESH=0.5    Minimum region confidence")
	fmt.Println("  OCRLITE_BOX_THRESH=0.3          Edge/box pixel threshold")
	fmt.Println("  OCRLITE_UNCLIP_RATIO=1.6        Box growth factor")
	fmt.Println("  OCRLITE_DO_ANGLE=true           Correct upside-down regions")
	fmt.Println("  OCRLITE_MOST_ANGLE=true         Apply the majority orientation to all regions")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Register it as a stdio server in your MCP client.")
}
