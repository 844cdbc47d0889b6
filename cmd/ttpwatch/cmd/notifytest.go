package cmd

import (
	"context"
	"log/slog"
	"ttpwatch/lib/telemetry"
	"ttpwatch/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send a test notification through every configured channel.",
	Run: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		cfg, err := loadConfig()
		if err != nil {
			serviceutil.Fatal("read config", err)
		}
		svc, err := buildService(cfg)
		if err != nil {
			serviceutil.Fatal("init slot watch", err)
		}

		err = svc.SendTest(context.Background())
		if err != nil {
			serviceutil.Fatal("test notification", err)
		}
		slog.Info("test notification sent")
	},
}

func init() {
	rootCmd.AddCommand(notifyTestCmd)
}
