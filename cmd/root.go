package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamal-hamza/grassfier/internal/adapters/picker"
	"github.com/kamal-hamza/grassfier/internal/adapters/predictor"
	"github.com/kamal-hamza/grassfier/internal/adapters/thumbnail"
	"github.com/kamal-hamza/grassfier/internal/core/ports"
	"github.com/kamal-hamza/grassfier/internal/core/services"
	"github.com/kamal-hamza/grassfier/internal/logging"
	"github.com/kamal-hamza/grassfier/internal/telemetry"
	"github.com/kamal-hamza/grassfier/pkg/appdir"
	"github.com/kamal-hamza/grassfier/pkg/config"
	"github.com/kamal-hamza/grassfier/pkg/ui"
)

var (
	// Application directories and settings
	appDirs   *appdir.Dirs
	appConfig *config.Config

	// Adapters
	predictorClient ports.Predictor
	filePicker      ports.FilePicker
	thumbnails      *thumbnail.HalfBlockRenderer

	// Lifecycle
	stopSignals context.CancelFunc
)

var (
	logger          = zap.NewNop()
	appCtx          = context.Background()
	shutdownTracing = func(context.Context) error { return nil }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gf",
	Short: "gf - Clasificador de imágenes de plantas Grassfier",
	Long: ui.StyleTitle.Render("Grassfier") + " - Clasificador de imágenes de plantas\n\n" +
		"Previsualiza una imagen de planta en la terminal y envíala al\n" +
		"servicio de predicción de Grassfier. Sin argumentos abre el panel.",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	RunE:               runDashboard,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SilenceErrors = true
}

// initializeApp loads settings and wires the adapters
func initializeApp(cmd *cobra.Command, args []string) error {
	// 1. .env in the working directory, if any
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. Directories
	dirs, err := appdir.New()
	if err != nil {
		return fmt.Errorf("failed to resolve application directories: %w", err)
	}
	if err := dirs.Initialize(); err != nil {
		return err
	}
	appDirs = dirs

	// 3. Configuration
	cfg, err := config.Load(appDirs.ConfigPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	appConfig = cfg
	ui.SetTheme(cfg.ColorTheme)

	// version and config don't need the rest
	if cmd.Name() == "version" || cmd.Name() == "config" || (cmd.HasParent() && cmd.Parent().Name() == "config") {
		return nil
	}

	// 4. Logging
	l, err := logging.NewLogger(appDirs.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = l

	// 5. Tracing
	appCtx, stopSignals = signal.NotifyContext(context.Background(), os.Interrupt)
	shutdown, err := telemetry.Initialize(appCtx, telemetry.Config{
		ServiceName:    "gf",
		ServiceVersion: Version,
		Endpoint:       cfg.TracingEndpoint,
		Insecure:       cfg.TracingInsecure,
	})
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		shutdownTracing = shutdown
	}

	// 6. Adapters
	predictorClient = predictor.NewHTTPClient(predictor.Options{
		Endpoint:  cfg.Endpoint,
		FieldName: cfg.FieldName,
		Timeout:   cfg.RequestTimeout(),
		Logger:    logger,
	})
	filePicker = picker.NewFuzzyPicker(cfg.PickerRoot)
	thumbnails = thumbnail.NewHalfBlockRenderer(cfg.PreviewWidth / 2)

	logger.Debug("gf started",
		zap.String("command", cmd.Name()),
		zap.String("endpoint", cfg.Endpoint),
	)
	return nil
}

// shutdownApp flushes logs and spans
func shutdownApp(cmd *cobra.Command, args []string) error {
	if err := shutdownTracing(context.Background()); err != nil {
		logger.Warn("failed to flush traces", zap.Error(err))
	}
	_ = logger.Sync()
	if stopSignals != nil {
		stopSignals()
	}
	return nil
}

// newClassifier builds a classifier with its own preview state
func newClassifier() *services.ClassifierService {
	return services.NewClassifierService(
		services.NewIntakeService(appConfig.MaxFileSize(), logger),
		services.NewPreviewState(),
		predictorClient,
		logger,
	)
}

// getContext returns a context for operations, cancelled on Ctrl+C
func getContext() context.Context {
	return appCtx
}
