// Command consolidator merges dated TIN source extracts with a TIN-match
// flag report and writes the consolidated output beside the flag report.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/internal/infrastructure"
	"tincli/internal/services"
	"tincli/pkg/contracts"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	sourceFolder string
	flagFile     string
	outputDir    string
	configFile   string
	excel        bool
	bom          bool
	version      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("consolidator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.sourceFolder, "src", "", "folder containing the dated source extracts")
	fs.StringVar(&opts.flagFile, "flag", "", "TIN-match flag report (.txt, .csv or .xlsx)")
	fs.StringVar(&opts.outputDir, "out", "", "output directory (defaults to the flag report's folder)")
	fs.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	fs.BoolVar(&opts.excel, "xlsx", false, "also write an .xlsx workbook")
	fs.BoolVar(&opts.bom, "bom", false, "prefix delimited outputs with a UTF-8 BOM")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if opts.excel {
		cfg.Export.Excel = true
	}
	if opts.bom {
		cfg.Export.BOMPrefix = true
	}

	logger := newLogger(cfg, stderr)

	in := bufio.NewReader(stdin)
	if opts.sourceFolder == "" {
		opts.sourceFolder = prompt(in, stdout, "Source folder: ")
	}
	if opts.sourceFolder != "" && opts.flagFile == "" {
		opts.flagFile = prompt(in, stdout, "Flag report file: ")
	}

	svc := services.NewConsolidationService(cfg, nil, logger)
	stats, err := svc.Run(ctx, services.ConsolidateRequest{
		SourceFolder: opts.sourceFolder,
		FlagFile:     opts.flagFile,
		OutputDir:    opts.outputDir,
	})

	switch {
	case err == nil:
		fmt.Fprintln(stdout, services.SuccessMessage(stats))
		if warning := services.WarningMessage(stats); warning != "" {
			fmt.Fprintf(stdout, "Warning: %s\n", warning)
		}
		return exitOK
	case errors.Is(err, apperrors.ErrUserCancelled):
		return exitOK
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Cancelled. No output files were written.")
		return exitError
	default:
		fmt.Fprintf(stderr, "Error: %s\n", apperrors.UserMessage(err))
		return exitError
	}
}

// prompt reads one trimmed line; EOF reads as a blank answer
func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// newLogger keeps console logs on stderr so stdout stays for results.
// File output goes through the global logger.
func newLogger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	if strings.EqualFold(cfg.Logging.Output, "console") || cfg.Logging.Output == "" {
		return infrastructure.NewLogger(cfg.Logging, stderr)
	}
	paths, err := config.GetPaths()
	if err == nil {
		cfg.Logging.FilePath = paths.ResolveLogPath(cfg.Logging.FilePath)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v; logging to stderr\n", err)
		return infrastructure.NewLogger(cfg.Logging, stderr)
	}
	if paths != nil {
		paths.LogPathResolution(logger, cfg.Logging.FilePath)
	}
	return logger
}
