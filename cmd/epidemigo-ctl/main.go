// Command epidemigo-ctl drives an in-process internal/manager.Manager
// from line-oriented stdin commands: new, list, info <id>, delete <id>,
// start <id> <stop_at>, step <id>, stop <id>, reset <id>, export <id>
// <path>, debug <id>, and :q. This is intentionally minimal — a full
// argument parser or shell is a named Non-goal — it exists only so the
// manager and wire protocol have one real end-to-end caller. Grounded on
// cuemby-warren/cmd/warren's cobra root command plus the teacher's own
// stdin-driven bin/contagion CLI.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kentwait/epidemigo/internal/config"
	"github.com/kentwait/epidemigo/internal/manager"
	"github.com/kentwait/epidemigo/internal/telemetry"
	"github.com/kentwait/epidemigo/internal/wire"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "epidemigo-ctl",
	Short: "Interactively drive a multi-world epidemigo manager",
	RunE:  runCtl,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to the world/runtime TOML used for 'new' (required)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.MarkFlagRequired("config")
}

func runCtl(cmd *cobra.Command, args []string) error {
	telemetry.Init(telemetry.Config{Level: telemetry.Level(logLevel)})

	doc, err := config.Load(configPath)
	if err != nil {
		return err
	}

	mgr := manager.New(telemetry.WithComponent("ctl"))
	ctx := cmd.Context()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("epidemigo-ctl ready; type :q to exit")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":q" {
			return nil
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "new":
			id := mgr.Spawn(doc.World, doc.Runtime, doc.Server.Seed)
			fmt.Println(id)

		case "list":
			for _, id := range mgr.List() {
				fmt.Println(id)
			}

		case "info":
			ok, errInfo := mgr.Info(ctx, arg(fields, 1))
			printResult(ok, errInfo)

		case "delete":
			if errInfo := mgr.Delete(ctx, arg(fields, 1)); errInfo != nil {
				fmt.Println("error:", errInfo.Error())
			}

		case "start":
			stopAt, _ := strconv.ParseUint(arg(fields, 2), 10, 32)
			ok, errInfo := mgr.Send(ctx, arg(fields, 1), wire.WorldRequest{Kind: wire.KindStart, StopAt: uint32(stopAt)})
			printResult(ok, errInfo)

		case "step":
			ok, errInfo := mgr.Send(ctx, arg(fields, 1), wire.WorldRequest{Kind: wire.KindStep})
			printResult(ok, errInfo)

		case "stop":
			ok, errInfo := mgr.Send(ctx, arg(fields, 1), wire.WorldRequest{Kind: wire.KindStop})
			printResult(ok, errInfo)

		case "reset":
			ok, errInfo := mgr.Send(ctx, arg(fields, 1), wire.WorldRequest{Kind: wire.KindReset})
			printResult(ok, errInfo)

		case "export":
			ok, errInfo := mgr.Send(ctx, arg(fields, 1), wire.WorldRequest{Kind: wire.KindExport, Path: arg(fields, 2)})
			printResult(ok, errInfo)

		case "debug":
			ok, errInfo := mgr.Send(ctx, arg(fields, 1), wire.WorldRequest{Kind: wire.KindDebug})
			printResult(ok, errInfo)

		default:
			fmt.Println("unrecognized command:", fields[0])
		}
	}
	return scanner.Err()
}

func arg(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func printResult(ok *wire.ResponseOk, errInfo *wire.ErrorInfo) {
	if errInfo != nil {
		fmt.Println("error:", errInfo.Error())
		return
	}
	if ok.Message != "" {
		fmt.Println(ok.Message)
	} else {
		fmt.Println("ok")
	}
}
