package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/avanishm/jobdigest/internal/logger"
	"github.com/avanishm/jobdigest/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// defaultCronSpec fires once a day at 08:00 local time, early enough for the
// digest to land before the workday starts.
const defaultCronSpec = "0 8 * * *"

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Keep running and deliver the digest on a cron schedule",
	Run: func(cmd *cobra.Command, _ []string) {
		schedule(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("cron", defaultCronSpec, "cron expression for digest runs")
	scheduleCmd.Flags().Bool("immediate", false, "also run once right away instead of waiting for the first tick")
	scheduleCmd.Flags().Duration("timeout", defaultRunTimeout, "per-run timeout")
}

func schedule(cmd *cobra.Command) {
	log0, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		log0.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Search == nil {
		log0.Fatal("search criteria are required under the search key")
	}

	spec, _ := cmd.Flags().GetString("cron")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	runOnce := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// Dependencies are rebuilt per tick so rotated key files and an
		// externally edited cache are picked up without a restart.
		deps, err := buildDeps(ctx, config, false, defaultPreviewPath, log0)
		if err != nil {
			log0.Error("assembling pipeline dependencies", zap.Error(err))
			return
		}

		opts := pipeline.Options{
			Criteria:     config.Search,
			Profile:      config.Profile,
			WindowDays:   config.WindowDays,
			Concurrency:  aiConcurrency(config),
			PersistCache: true,
		}

		if _, err := pipeline.Run(ctx, opts, *deps); err != nil {
			log0.Error("scheduled run failed", zap.Error(err))
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(spec, runOnce); err != nil {
		log0.Fatal("parsing cron expression", zap.String("cron", spec), zap.Error(err))
	}

	scheduler.Start()
	log0.Info("scheduler started", zap.String("cron", spec))

	if immediate, _ := cmd.Flags().GetBool("immediate"); immediate {
		go runOnce()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log0.Info("shutting down, waiting for a running job to finish")
	<-scheduler.Stop().Done()
}
