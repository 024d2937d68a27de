package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/tartampluch/go-datetools/internal/config"
	"github.com/tartampluch/go-datetools/internal/engine"
	"github.com/tartampluch/go-datetools/internal/i18n"
	"github.com/tartampluch/go-datetools/internal/server"
)

// Usage-class errors make runMain print the help text instead of a stack of logs.
var (
	errMissingArgument = errors.New(config.ErrMissingArgument)
	errUnknownCommand  = errors.New(config.ErrUnknownCommand)
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	lang := flag.String(config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	serveMode := flag.Bool(config.FlagServe, false, config.FlagDescServe)
	port := flag.String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// Structured logs go to stderr and a cache-dir file; stdout stays reserved
	// for command results.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if *serveMode {
		logStartupInfo()
		if err := runServer(ctx, *port); err != nil {
			slog.Error(config.ErrAppFailed,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
			return config.ExitCodeError
		}
		slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
		return config.ExitCodeSuccess
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, config.UsageText)
		return config.ExitCodeUsage
	}

	out, err := runCommand(ctx, i18n.New(*lang), args)
	if err != nil {
		if errors.Is(err, errMissingArgument) || errors.Is(err, errUnknownCommand) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprint(os.Stderr, config.UsageText)
			return config.ExitCodeUsage
		}
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		fmt.Fprintln(os.Stderr, err)
		return config.ExitCodeError
	}

	fmt.Println(out)
	return config.ExitCodeSuccess
}

// runServer validates the port, builds the index document and blocks serving
// the API until the context is cancelled.
func runServer(ctx context.Context, port string) error {
	if err := validatePort(port); err != nil {
		return err
	}

	srv := server.NewAPIServer(port)

	doc, err := server.IndexDocument()
	if err != nil {
		return err
	}
	srv.Update(doc)

	return srv.Start(ctx)
}

// validatePort mirrors the range checks done for the -port flag.
func validatePort(port string) error {
	if port == "" {
		return errors.New(config.ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(config.ErrPortNumber)
	}
	if n < config.MinPort || n > config.MaxPort {
		return errors.New(config.ErrPortRange)
	}
	return nil
}

// runCommand dispatches a one-shot calculation and returns the localized
// result line for stdout.
func runCommand(ctx context.Context, tr *i18n.Translator, args []string) (string, error) {
	cmd, rest := args[0], args[1:]
	slog.Debug(config.MsgCmdDispatch,
		config.LogKeyComponent, config.CompCLI,
		config.LogKeyCommand, cmd,
	)

	switch cmd {
	case config.CmdLeap:
		if len(rest) < 1 {
			return "", errMissingArgument
		}
		year, err := strconv.Atoi(rest[0])
		if err != nil {
			return "", errors.New(config.ErrYearNumber)
		}

		key := config.TKeyLeapNo
		if engine.IsLeapYear(year) {
			key = config.TKeyLeapYes
		}
		return tr.MsgData(key, map[string]any{"Year": year}), nil

	case config.CmdAngle:
		if len(rest) < 1 {
			return "", errMissingArgument
		}
		at, _, err := engine.ParseAny(rest[0])
		if err != nil {
			return "", err
		}

		return tr.MsgData(config.TKeyAngle, map[string]any{
			"Instant": engine.FormatISO8601(at),
			"Radians": strconv.FormatFloat(engine.ClockHandsAngle(at), 'f', 6, 64),
			"Degrees": strconv.FormatFloat(engine.ClockHandsDegrees(at), 'f', 1, 64),
		}), nil

	case config.CmdSpan:
		if len(rest) < 2 {
			return "", errMissingArgument
		}
		start, _, err := engine.ParseAny(rest[0])
		if err != nil {
			return "", err
		}
		end, _, err := engine.ParseAny(rest[1])
		if err != nil {
			return "", err
		}

		span, err := engine.TimeSpanToString(start, end)
		if err != nil {
			return "", err
		}
		return tr.MsgData(config.TKeySpan, map[string]any{"Span": span}), nil

	case config.CmdParse:
		if len(rest) < 1 {
			return "", errMissingArgument
		}
		at, grammar, err := engine.ParseAny(rest[0])
		if err != nil {
			return "", err
		}

		return tr.MsgData(config.TKeyParse, map[string]any{
			"Grammar": grammar,
			"ISO":     engine.FormatISO8601(at),
			"UnixMs":  at.UnixMilli(),
		}), nil

	case config.CmdSkew:
		if len(rest) < 1 {
			return "", errMissingArgument
		}
		return runSkew(ctx, tr, rest[0])

	default:
		return "", fmt.Errorf("%w: %q", errUnknownCommand, cmd)
	}
}

// runSkew measures the clock offset of a remote HTTP server and renders it
// through the timespan formatter.
func runSkew(ctx context.Context, tr *i18n.Translator, targetURL string) (string, error) {
	skew, _, err := engine.MeasureSkew(ctx, engine.NewHTTPDateFetcher(), engine.RealClock{}, targetURL)
	if err != nil {
		return "", err
	}

	key := config.TKeySkewNone
	switch {
	case skew > 0:
		key = config.TKeySkewAhead
	case skew < 0:
		key = config.TKeySkewBehind
	}

	abs := skew
	if abs < 0 {
		abs = -abs
	}
	epoch := time.Unix(0, 0)
	span, err := engine.TimeSpanToString(epoch, epoch.Add(abs))
	if err != nil {
		return "", err
	}

	return tr.MsgData(key, map[string]any{
		"URL":  targetURL,
		"Span": span,
	}), nil
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stderr, keeping stdout clean for results.
	writers = append(writers, os.Stderr)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		// Use centralized permission constants for security.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
