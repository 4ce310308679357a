package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing the export and import pipelines.

The API provides endpoints for:
  - POST /api/v1/export/xml  - Render canonical JSON as CII XML
  - POST /api/v1/export/pdf  - Build a hybrid PDF (multipart)
  - POST /api/v1/import      - Parse a PDF or XML invoice
  - POST /api/v1/validate    - Validate against the EN 16931 schema
  - POST /api/v1/detect      - Detect the container format
  - GET  /health             - Health check

Examples:
  # Start server on default port
  facturx serve

  # Start on custom port in debug mode
  facturx serve --address :8080 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Optional .env for deployments; absence is fine.
	_ = godotenv.Load()

	if addr := os.Getenv("FACTURX_ADDRESS"); addr != "" && !cmd.Flags().Changed("address") {
		serverAddr = addr
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if serverDebug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	config := &server.Config{
		Address:      serverAddr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}

	srv, err := server.NewServer(config, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	return srv.Run()
}
