// Package servecmder provides the serve command that runs the mnemosyne API.
package servecmder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BillDuke13/mnemosyne/api"
	"github.com/BillDuke13/mnemosyne/api/mcp"
	"github.com/BillDuke13/mnemosyne/pkg/config"
	"github.com/BillDuke13/mnemosyne/pkg/logger"
)

var errNoViper = errors.New("configuration not initialized")

type serveCommander struct {
	listen      string
	chainRPC    string
	tableID     string
	aggregator  string
	concurrency uint
	speech      bool
	backend     string
	brokers     string
	topic       string

	debug    bool
	jsonLogs bool
	logFile  string

	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run the Mnemosyne API server.

Serves POST /identify, GET /health, GET /metrics, the MCP endpoint at /mcp
and the capture page at /. Each identification resolves a face hint against
the on-chain memory table, fetches the summary from Walrus and verifies it
against the committed SHA3-256 notes hash before returning it.

Configuration is layered: flags, then MNEMOSYNE_* environment variables
(plus SUI_RPC, WALRUS_AGGREGATOR, ENABLE_TTS and OPENAI_API_KEY), then
.mnemosyne/config.toml, then built-in defaults. A .env file in the working
directory is loaded first.

Examples:
  mnemosyne serve
  mnemosyne serve --listen :9000 --speech
  mnemosyne serve --kafka-brokers localhost:9092`

const serveShortDesc string = "Run the Mnemosyne API server"

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagChainRPC,
	config.FlagTableID,
	config.FlagAggregator,
	config.FlagConcurrency,
	config.FlagSpeech,
	config.FlagSpeechBackend,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.logFile, _ = cmd.Flags().GetString("log-file")
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagChainRPC, &cmder.chainRPC)
	config.AddStringFlag(cmd, config.Flags, config.FlagTableID, &cmder.tableID)
	config.AddStringFlag(cmd, config.Flags, config.FlagAggregator, &cmder.aggregator)
	config.AddUintFlag(cmd, config.Flags, config.FlagConcurrency, &cmder.concurrency)
	config.AddBoolFlag(cmd, config.Flags, config.FlagSpeech, &cmder.speech)
	config.AddStringFlag(cmd, config.Flags, config.FlagSpeechBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.topic)
	cmd.Flags().BoolVar(&cmder.jsonLogs, "log-json", false, "Write JSON logs to stdout instead of pretty output")

	return cmd
}

func (c *serveCommander) run() error {
	if c.viper == nil {
		return errNoViper
	}

	cfg, err := config.FromViper(c.viper)
	if err != nil {
		return err
	}

	logFile, err := c.setupLogger()
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	s, err := newStack(cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.logger.Warn("closing event publisher", "error", err)
		}
	}()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Identifier: s.service,
		Logger:     c.logger.With("component", "mcp"),
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		Chain: api.ChainInfo{
			PackageID:        cfg.Chain.PackageID,
			MemoryBookID:     cfg.Chain.MemoryBookID,
			TableID:          cfg.Chain.TableID,
			WalrusAggregator: cfg.Walrus.Aggregator,
			SuiRPC:           cfg.Chain.RPC,
		},
		RequestTimeout: cfg.HTTP.Timeout,
	}, s.service, c.logger, api.WithMCPHandler(mcpServer.Handler()))
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("mnemosyne configured",
		"table_id", cfg.Chain.TableID,
		"sui_rpc", cfg.Chain.RPC,
		"walrus_aggregator", cfg.Walrus.Aggregator,
		"speech", cfg.Speech.Enabled,
		"hints", len(cfg.Hints),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

// setupLogger builds the service logger and, when --log-file is set, tees
// JSON logs into that file. The returned file must be closed by the caller.
func (c *serveCommander) setupLogger() (*os.File, error) {
	format := logger.FormatPretty
	if c.jsonLogs {
		format = logger.FormatJSON
	}
	c.logger = logger.New(c.logOptions(format, nil)...)

	if c.logFile == "" {
		return nil, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(c.logger, logger.New(c.logOptions(logger.FormatJSON, f)...))

	return f, nil
}

// logOptions applies --debug: Debug level plus caller file and line. A nil
// writer keeps stdout.
func (c *serveCommander) logOptions(format logger.Format, w io.Writer) []logger.Option {
	opts := []logger.Option{
		logger.WithDebug(c.debug),
		logger.WithSource(c.debug),
		logger.WithFormat(format),
	}
	if w != nil {
		opts = append(opts, logger.WithWriter(w))
	}
	return opts
}
