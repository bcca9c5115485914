// Command epidemigo-worker spawns and reaps epidemigo-world child
// processes (spec.md section 1: "a worker service manages child
// simulation processes") and serves this process's own Prometheus
// registry over HTTP; metrics recorded inside the child processes are not
// collected. Grounded on cuemby-warren/pkg/worker's heartbeat/executor
// goroutine-loop shape, generalized from containers to simulation
// subprocesses, and on cuemby-warren/pkg/metrics's promhttp mount.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kentwait/epidemigo/internal/telemetry"
)

var (
	metricsAddr string
	logLevel    string
	logJSON     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "epidemigo-worker [config paths...]",
	Short: "Spawn and supervise epidemigo-world child processes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWorker,
}

func init() {
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9109", "address to serve /metrics on")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&logJSON, "log-json", false, "output logs as JSON")
}

// child tracks one spawned epidemigo-world subprocess.
type child struct {
	configPath string
	cmd        *exec.Cmd
}

func runWorker(cmd *cobra.Command, configPaths []string) error {
	telemetry.Init(telemetry.Config{Level: telemetry.Level(logLevel), JSONOutput: logJSON})
	log := telemetry.WithComponent("worker")

	go func() {
		log.Info().Str("addr", metricsAddr).Msg("serving metrics")
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server exited")
		}
	}()

	var wg sync.WaitGroup
	children := make([]*child, 0, len(configPaths))

	for _, path := range configPaths {
		c := &child{
			configPath: path,
			cmd:        exec.Command("epidemigo-world", "--config", path),
		}
		c.cmd.Stdout = os.Stdout
		c.cmd.Stderr = os.Stderr

		if err := c.cmd.Start(); err != nil {
			log.Error().Err(err).Str("config", path).Msg("failed to start world")
			continue
		}
		log.Info().Str("config", path).Int("pid", c.cmd.Process.Pid).Msg("world started")
		children = append(children, c)

		wg.Add(1)
		go func(c *child) {
			defer wg.Done()
			if err := c.cmd.Wait(); err != nil {
				log.Error().Err(err).Str("config", c.configPath).Msg("world exited with error")
			} else {
				log.Info().Str("config", c.configPath).Msg("world exited")
			}
		}(c)
	}

	wg.Wait()
	return nil
}
