package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/greenbier/bestbets-engine/internal/config"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "engine",
		Short: "bestbets-engine: sports-betting decision engine",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(gradeCmd())
	root.AddCommand(trapEvalCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(snapshotCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and, unless disabled, the scheduled learning jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			log.Info().Str("env", cfg.AppEnv).Str("log_level", cfg.LogLevel).Msg("configuration loaded")

			a, err := buildApp(cfg, false)
			if err != nil {
				return fmt.Errorf("building app: %w", err)
			}
			defer a.index.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				log.Info().Msg("received shutdown signal, gracefully shutting down...")
				cancel()
			}()

			go startMetricsServer(cfg.MetricsPort)

			if cfg.EnableScheduler {
				if err := a.registerJobs(); err != nil {
					return err
				}
				a.scheduler.Start()
				schedulerRunning.Store(true)
				defer func() {
					a.scheduler.Stop()
					schedulerRunning.Store(false)
				}()
				log.Info().Msg("scheduler started")
			}

			srv := &http.Server{
				Addr:    ":" + strconv.Itoa(cfg.ServerPort),
				Handler: a.newRouter(),
			}
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server failed")
				}
			}()

			<-ctx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func gradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grade",
		Short: "run one auto-grader pass over graded prediction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			a, err := buildApp(cfg, false)
			if err != nil {
				return err
			}
			defer a.index.Close()

			lesson, err := a.grader.Run(a.authority.NowET())
			if err != nil {
				return err
			}
			log.Info().Str("summary", lesson.Summary).Msg("grading complete")
			return nil
		},
	}
}

func trapEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trap-eval",
		Short: "run one trap-loop pass over graded prediction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			a, err := buildApp(cfg, false)
			if err != nil {
				return err
			}
			defer a.index.Close()
			return a.traps.Run(a.authority.NowET())
		},
	}
}

func auditCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "print recent weight-adjustment audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			a, err := buildApp(cfg, false)
			if err != nil {
				return err
			}
			defer a.index.Close()

			entries, err := a.store.RecentAuditEntries(days)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s [%s] %s/%s %s delta=%.4f %s\n",
					e.TimestampUTC.Format(time.RFC3339), e.Source, e.Sport, e.Market, e.Signal, e.Delta, e.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "lookback window in days")
	return cmd
}

func snapshotCmd() *cobra.Command {
	var backfill bool
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "record a line-history snapshot for every tracked sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			a, err := buildApp(cfg, backfill)
			if err != nil {
				return err
			}
			defer a.index.Close()

			if backfill {
				log.Info().Msg("replaying cached provider responses only, no live calls will be made")
			}
			return a.runLineSnapshot(context.Background())
		},
	}
	cmd.Flags().BoolVar(&backfill, "backfill", false, "replay only already-cached provider responses instead of calling live APIs")
	return cmd
}
