// Command actiond wires the registry loader, executor, RPC surface, and
// diagnostics server together and runs until terminated: initialize,
// load, serve, then shut down gracefully on signal.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"actiond/adapter"
	"actiond/config"
	"actiond/diag"
	"actiond/executor"
	"actiond/loader"
	"actiond/rpc"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(configFromEnv())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	sources := buildSources(cfg)
	ld := loader.New(logger, sources...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := ld.Load(ctx)
	if err != nil {
		log.Fatalf("initial load: %v", err)
	}
	logger.Info("loaded actions", "loaded", report.Loaded, "failed", report.Failed)
	for _, issue := range report.Issues {
		logger.Warn("load issue", "path", issue.SourcePath, "namespace", issue.Namespace, "message", issue.Message)
	}

	limits := executor.Limits{
		MaxDepth:      cfg.MaxDepth,
		MaxSteps:      cfg.MaxSteps,
		StepTimeout:   time.Duration(cfg.StepTimeoutMS) * time.Millisecond,
		ActionTimeout: time.Duration(cfg.ActionTimeoutMS) * time.Millisecond,
	}

	// A concrete BrowserAdapter (talking to a real browser process) is
	// supplied by whatever embeds this daemon; adapter.Fake stands in as
	// the reference implementation used by the test suite and this
	// standalone binary.
	exec := executor.New(logger, ld.Registry(), adapter.NewFake(), limits)
	svc := rpc.New(logger, ld, exec)
	go reloadLoop(ctx, logger, svc)

	diagAddr := os.Getenv("ACTIONS_DIAG_ADDR")
	if diagAddr == "" {
		diagAddr = ":9091"
	}
	diagServer := diag.New(logger, ld, exec, diagAddr)

	if err := diagServer.Start(ctx); err != nil {
		logger.Error("diag server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func configFromEnv() map[string]any {
	raw := map[string]any{}
	if paths := os.Getenv("ACTIONS_PATHS"); paths != "" {
		raw["paths"] = splitCSV(paths)
	}
	if pkgs := os.Getenv("ACTIONS_PACKAGE_REFS"); pkgs != "" {
		raw["packages"] = splitCSV(pkgs)
	}
	return raw
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func buildSources(cfg *config.Config) []loader.Source {
	var sources []loader.Source
	for i, dir := range cfg.Paths {
		sources = append(sources, loader.NewDirSource(pathLabel(i), dir))
	}
	if len(cfg.Packages) > 0 {
		sources = append(sources, loader.NewPackageSource(nil, cfg.Packages))
	}
	return sources
}

func pathLabel(i int) string {
	if i == 0 {
		return "builtin"
	}
	return fmt.Sprintf("path%d", i)
}

// reloadLoop periodically re-reads every source and atomically swaps the
// live registry, so new or edited action files on disk take effect
// without a daemon restart.
func reloadLoop(ctx context.Context, logger *slog.Logger, svc *rpc.Service) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := svc.Reload(ctx)
			if err != nil {
				logger.Error("periodic reload failed", "error", err)
				continue
			}
			if !result.Success {
				logger.Warn("periodic reload had failures", "loaded", result.Loaded, "failed", result.Failed)
			}
		}
	}
}
