package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"ttpwatch/lib/telemetry"
	"ttpwatch/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the poll loop until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		ctx := serviceutil.SignalContext()

		tel, err := telemetry.SetupFromEnv(ctx, "ttpwatch")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("setup telemetry", err)
		}
		if err == nil {
			defer tel.Shutdown(context.Background())
			telemetry.InstrumentPerfStats(ctx)
		}

		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		svc, err := buildService(cfg)
		if err != nil {
			serviceutil.Fatal("init slot watch", err)
		}

		if cfg.StatusPort != 0 {
			mux := http.NewServeMux()
			mux.Handle("/status", svc.StatusHandler())
			go serviceutil.StartHttpServer(cfg.StatusPort, mux)
		}

		if cfg.NotifyOnStart {
			err := svc.SendTest(ctx)
			if err != nil {
				slog.Error("startup test notification failed", "err", err)
			}
		}

		svc.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
