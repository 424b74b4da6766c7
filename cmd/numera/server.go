package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kalambet/numera/internal/analytics"
	"github.com/kalambet/numera/internal/api"
	"github.com/kalambet/numera/internal/cache"
	"github.com/kalambet/numera/internal/config"
	"github.com/kalambet/numera/internal/metrics"
	"github.com/kalambet/numera/internal/numerology"
	"github.com/kalambet/numera/internal/profile"
	"github.com/kalambet/numera/internal/storage"
	"github.com/kalambet/numera/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the numera server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running numera server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show numera server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", true, "serve MCP over stdin/stdout alongside HTTP")
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "numera.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// buildCache assembles the reading cache: an in-process LRU, backed by
// Redis when a URL is configured and reachable. The returned func
// releases the Redis connection.
func buildCache(ctx context.Context, cfg config.Config, stats cache.Stats) (numerology.Cache, func(), error) {
	ttl := cfg.Cache.TTLDuration()
	mem, err := cache.NewMemory(cfg.Cache.MaxEntries, ttl, cache.WithStats(stats))
	if err != nil {
		return nil, nil, fmt.Errorf("creating memory cache: %w", err)
	}
	if cfg.Cache.RedisURL == "" {
		return mem, func() {}, nil
	}

	client, err := cache.DialRedis(ctx, cfg.Cache.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, using memory cache only", "error", err)
		return mem, func() {}, nil
	}
	slog.Info("redis cache connected")
	return cache.NewTiered(mem, cache.NewRedis(client, ttl, stats)), func() {
		if err := client.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	}, nil
}

// buildSink fans delivered events out to the tally table, the log and,
// when brokers are configured, Kafka. The returned func closes the
// Kafka client.
func buildSink(cfg config.Config, store *storage.Store) (analytics.Sink, func()) {
	sinks := analytics.MultiSink{analytics.NewStoreSink(store), analytics.NewLogSink(nil)}
	brokers := cfg.Analytics.Brokers()
	if len(brokers) == 0 {
		return sinks, func() {}
	}
	kafka, err := analytics.NewKafkaSink(brokers, cfg.Analytics.KafkaTopic)
	if err != nil {
		slog.Warn("kafka sink disabled", "error", err)
		return sinks, func() {}
	}
	slog.Info("kafka sink enabled", "topic", cfg.Analytics.KafkaTopic)
	return append(sinks, kafka), kafka.Close
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "numera version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Ensure API token exists in platform secret store.
	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("numera is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("numera is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, "numera", version)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("flushing traces", "error", err)
		}
	}()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	readingCache, closeCache, err := buildCache(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeCache()

	// Build the calculation engine. Validation in config.Load guarantees
	// these parse.
	karmic, _ := numerology.ParseKarmicMode(cfg.Engine.KarmicMode)
	defaultSystem, _ := numerology.ParseSystem(cfg.Engine.DefaultSystem)

	observers := numerology.Observers{m}
	if cfg.Analytics.Enabled {
		observers = append(observers, analytics.NewRecorder(store))

		sink, closeSink := buildSink(cfg, store)
		defer closeSink()
		worker := analytics.NewWorker(store, sink, m, 500*time.Millisecond)
		go worker.Run(ctx)
	}

	eng := numerology.NewEngine(numerology.EngineConfig{
		Cache:        readingCache,
		Observer:     observers,
		KarmicMode:   karmic,
		MinBirthYear: cfg.Engine.MinBirthYear,
	})
	profileMgr := profile.NewManager(store, eng)

	appHandler := api.NewAppHandler(api.AppDeps{
		Engine:        eng,
		Profiles:      profileMgr,
		Tallies:       store,
		DefaultSystem: defaultSystem,
		Token:         apiToken,
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           appHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start MCP server (stdio transport in a goroutine).
	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Engine:        eng,
			Profiles:      profileMgr,
			DefaultSystem: defaultSystem,
			Version:       version,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "numera listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("numera is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop numera (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to numera (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("System", "%s (karmic: %s)", cfg.Engine.DefaultSystem, cfg.Engine.KarmicMode)
	if cfg.Cache.RedisURL != "" {
		printStatus("Cache", "memory (%d entries) + redis, ttl %s", cfg.Cache.MaxEntries, cfg.Cache.TTL)
	} else {
		printStatus("Cache", "memory (%d entries), ttl %s", cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	switch {
	case !cfg.Analytics.Enabled:
		printStatus("Analytics", "disabled")
	case len(cfg.Analytics.Brokers()) > 0:
		printStatus("Analytics", "enabled (kafka topic %s)", cfg.Analytics.KafkaTopic)
	default:
		printStatus("Analytics", "enabled")
	}

	// Show today's calculation counts if the server is running.
	apiToken, tokenErr := config.GetAPIToken(config.NewKeychain())
	if tokenErr == nil && running {
		if tallies, err := fetchTallies(client, serverURL+"/stats?days=1", apiToken); err == nil {
			var total, hits int
			for _, t := range tallies {
				total += t.Computations
				hits += t.CacheHits
			}
			printStatus("Today", "%s calculations, %d cache hits", countLabel(total, 100000), hits)
		}
		if profiles, err := fetchCount(client, serverURL+"/profiles?limit=100", apiToken); err == nil {
			printStatus("Profiles", "%s", countLabel(profiles, 100))
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func countLabel(count, limit int) string {
	if count >= limit {
		return fmt.Sprintf("%d+", count)
	}
	return fmt.Sprintf("%d", count)
}

func apiGet(client *http.Client, url, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return client.Do(req)
}

func fetchTallies(client *http.Client, url, token string) ([]storage.Tally, error) {
	resp, err := apiGet(client, url, token)
	if err != nil {
		return nil, err
	}
	var tallies []storage.Tally
	if err := decodeJSON(resp, &tallies); err != nil {
		return nil, err
	}
	return tallies, nil
}

func fetchCount(client *http.Client, url, token string) (int, error) {
	resp, err := apiGet(client, url, token)
	if err != nil {
		return 0, err
	}
	var items []struct{}
	if err := decodeJSON(resp, &items); err != nil {
		return 0, err
	}
	return len(items), nil
}
