package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
	"inferd/internal/engine"
	"inferd/internal/httpapi"
	"inferd/internal/registry"
	"inferd/internal/session"
)

var version = "dev"

type serveOptions struct {
	configPath   string
	addr         string
	modelsDir    string
	storageDir   string
	defaultModel string
	logLevel     string

	accelerator string
	maxTokens   int
	topK        int
	topP        float64
	temperature float64

	interruptGraceMS int
	generateTimeout  int64
	maxBodyBytes     int64

	ctxSize   int
	threads   int
	gpuLayers int

	corsOrigins string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().Logger()
}

// mergeConfig overlays a config file (when given) under flag values that were
// left at their defaults. Flags explicitly set on the command line win.
func mergeConfig(cmd *cobra.Command, opts *serveOptions) error {
	if opts.configPath == "" {
		return nil
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", opts.configPath, err)
	}
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if !set("addr") && cfg.Addr != "" {
		opts.addr = cfg.Addr
	}
	if !set("models-dir") && cfg.ModelsDir != "" {
		opts.modelsDir = cfg.ModelsDir
	}
	if !set("storage-dir") && cfg.StorageDir != "" {
		opts.storageDir = cfg.StorageDir
	}
	if !set("default-model") && cfg.DefaultModel != "" {
		opts.defaultModel = cfg.DefaultModel
	}
	if !set("log-level") && cfg.LogLevel != "" {
		opts.logLevel = cfg.LogLevel
	}
	if !set("accelerator") && cfg.Accelerator != "" {
		opts.accelerator = cfg.Accelerator
	}
	if !set("max-tokens") && cfg.MaxTokens != 0 {
		opts.maxTokens = cfg.MaxTokens
	}
	if !set("top-k") && cfg.TopK != 0 {
		opts.topK = cfg.TopK
	}
	if !set("top-p") && cfg.TopP != 0 {
		opts.topP = cfg.TopP
	}
	if !set("temperature") && cfg.Temperature != 0 {
		opts.temperature = cfg.Temperature
	}
	if !set("interrupt-grace-ms") && cfg.InterruptGraceMS != 0 {
		opts.interruptGraceMS = cfg.InterruptGraceMS
	}
	return nil
}

func runServe(opts *serveOptions, log zerolog.Logger) error {
	reg, err := registry.LoadDir(opts.modelsDir)
	if err != nil {
		return fmt.Errorf("load models from %s: %w", opts.modelsDir, err)
	}
	log.Info().Int("models", len(reg)).Str("dir", opts.modelsDir).Msg("model registry loaded")

	mgr := session.NewWithConfig(session.ManagerConfig{
		Registry:     reg,
		StorageDir:   opts.storageDir,
		DefaultModel: opts.defaultModel,
		Engine:       engine.NewLlamaEngine(opts.ctxSize, opts.threads, opts.gpuLayers),
		GenConfig: engine.Config{
			Accelerator: opts.accelerator,
			MaxTokens:   opts.maxTokens,
			TopK:        opts.topK,
			TopP:        opts.topP,
			Temperature: opts.temperature,
		},
		InterruptGrace: time.Duration(opts.interruptGraceMS) * time.Millisecond,
		Logger:         &log,
	})

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(opts.maxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(opts.generateTimeout)
	if opts.corsOrigins != "" {
		httpapi.SetCORSOptions(true, splitCSV(opts.corsOrigins),
			[]string{"GET", "POST", "DELETE", "OPTIONS"},
			[]string{"Content-Type", "X-Log-Level"})
	}

	// Base context cancels in-flight generations on shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", opts.addr).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}

	root := &cobra.Command{
		Use:           "inferd",
		Short:         "Local LLM inference session daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mergeConfig(cmd, opts); err != nil {
				return err
			}
			return runServe(opts, newLogger(opts.logLevel))
		},
	}
	f := serveCmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", os.Getenv("INFERD_CONFIG"), "Config file (yaml, json or toml)")
	f.StringVar(&opts.addr, "addr", envOr("INFERD_ADDR", ":8080"), "HTTP listen address")
	f.StringVar(&opts.modelsDir, "models-dir", envOr("INFERD_MODELS_DIR", "~/models/llm"), "Directory to scan for *.task and *.gguf model files")
	f.StringVar(&opts.storageDir, "storage-dir", envOr("INFERD_STORAGE_DIR", ""), "Private storage searched for bare model names")
	f.StringVar(&opts.defaultModel, "default-model", envOr("INFERD_DEFAULT_MODEL", ""), "Model id used when a request omits model")
	f.StringVar(&opts.logLevel, "log-level", envOr("INFERD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	f.StringVar(&opts.accelerator, "accelerator", "cpu", "Inference accelerator: cpu|gpu")
	f.IntVar(&opts.maxTokens, "max-tokens", engine.DefaultMaxTokens, "Maximum tokens to generate per request")
	f.IntVar(&opts.topK, "top-k", engine.DefaultTopK, "Top-k sampling parameter")
	f.Float64Var(&opts.topP, "top-p", engine.DefaultTopP, "Top-p sampling parameter")
	f.Float64Var(&opts.temperature, "temperature", engine.DefaultTemperature, "Sampling temperature")
	f.IntVar(&opts.interruptGraceMS, "interrupt-grace-ms", 0, "Grace period before abandoning a cancelled stream (0 disables)")
	f.Int64Var(&opts.generateTimeout, "generate-timeout-sec", 0, "Per-request generation timeout in seconds (0 disables)")
	f.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 1<<20, "Maximum request body size in bytes")
	f.IntVar(&opts.ctxSize, "ctx-size", 2048, "Model context window size")
	f.IntVar(&opts.threads, "threads", 0, "Inference threads (0 = runtime default)")
	f.IntVar(&opts.gpuLayers, "gpu-layers", 0, "Layers to offload to the GPU")
	f.StringVar(&opts.corsOrigins, "cors-origins", os.Getenv("INFERD_CORS_ORIGINS"), "Comma-separated allowed CORS origins (empty disables CORS)")
	root.AddCommand(serveCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List models discovered in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("models-dir")
			reg, err := registry.LoadDir(dir)
			if err != nil {
				return err
			}
			for _, m := range reg {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, m.Path)
			}
			return nil
		},
	}
	modelsCmd.Flags().String("models-dir", envOr("INFERD_MODELS_DIR", "~/models/llm"), "Directory to scan for model files")
	root.AddCommand(modelsCmd)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "inferd:", err)
		os.Exit(1)
	}
}
