// Command epidemigo-world is the supervisor process from spec.md
// section 1: it loads one world configuration, runs a single World under
// a Supervisor, and serves the wire protocol over stdio so a parent
// epidemigo-worker (or any process, including a human at a terminal) can
// drive it. Grounded on cuemby-warren/cmd/warren's cobra root command
// shape.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kentwait/epidemigo/internal/config"
	"github.com/kentwait/epidemigo/internal/supervisor"
	"github.com/kentwait/epidemigo/internal/telemetry"
	"github.com/kentwait/epidemigo/internal/transport"
	"github.com/kentwait/epidemigo/internal/wire"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "epidemigo-world",
	Short: "Run a single epidemic simulation world over stdio",
	RunE:  runWorld,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to the world's TOML configuration (required)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "output logs as JSON")
	rootCmd.MarkFlagRequired("config")
}

func runWorld(cmd *cobra.Command, args []string) error {
	telemetry.Init(telemetry.Config{Level: telemetry.Level(logLevel), JSONOutput: logJSON})

	doc, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sup := supervisor.New("self", doc.World, doc.Runtime, doc.Server.Seed, telemetry.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	go sup.Run(ctx)

	ch := transport.NewStdio(os.Stdin, os.Stdout)
	defer ch.Close()

	for {
		var req wire.WorldRequest
		if err := ch.ReadDatagram(&req); err != nil {
			return nil // peer closed the stream; exit cleanly
		}
		ok, errInfo := sup.Send(ctx, req)
		resp := wire.Response{Ok: ok, Err: errInfo}
		if err := ch.WriteDatagram(&resp); err != nil {
			return err
		}
	}
}
