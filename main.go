package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gr-butler/alarmstation/env"
	"github.com/gr-butler/alarmstation/metrics"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "GRB-Alarm-1.0.0"

var args env.Args

var rootCmd = &cobra.Command{
	Use:          "alarmstation",
	Short:        "Threshold alarm: reads one sensor and drives LEDs and buzzers",
	Version:      version,
	SilenceUsage: true,
	RunE:         runStation,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the built in station profiles",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, p := range env.Profiles() {
			cmd.Println(p)
		}
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Write the effective configuration as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, a []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return cfg.Save(a[0])
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	args.ConfigPath = f.StringP("config", "c", "", "YAML configuration file overlaid on the profile")
	args.Profile = f.StringP("profile", "p", env.DefaultProfile, "built in station profile")
	args.Test = f.Bool("test", false, "test mode, no hardware is touched")
	args.Verbose = f.BoolP("verbose", "v", false, "log every cycle")
	args.Metrics = f.String("metrics", "", "listen address for /metrics, e.g. :9100")
	args.Cycles = rootCmd.Flags().Int("cycles", 0, "stop after this many cycles, 0 runs forever")
	args.Serial = f.String("serial", "", "serial port for the status console")
	args.MQTT = f.String("mqtt", "", "MQTT broker for status messages, e.g. tcp://localhost:1883")

	rootCmd.AddCommand(profilesCmd, dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("Exiting [%v]", err)
		os.Exit(1)
	}
}

// loadConfig applies the command line on top of the profile and file.
func loadConfig() (*env.Config, error) {
	cfg, err := env.Load(*args.ConfigPath, *args.Profile)
	if err != nil {
		return nil, err
	}
	if *args.Serial != "" {
		cfg.Report.Serial.Port = *args.Serial
	}
	if *args.MQTT != "" {
		cfg.Report.MQTT.Broker = *args.MQTT
	}
	if *args.Metrics != "" {
		cfg.Metrics.Listen = *args.Metrics
	}
	return cfg, nil
}

func runStation(cmd *cobra.Command, _ []string) error {
	if *args.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	logger.Infof("Starting alarm station [%v]", version)

	cfg, err := loadConfig()
	if err != nil {
		logger.Errorf("Bad configuration [%v]", err)
		return err
	}
	logger.Infof("Profile [%v] cadence [%v] mode [%v]", cfg.Name, cfg.Cadence, cfg.Policy.Mode)
	if *args.Test {
		logger.Info("TEST MODE")
	}

	a, err := newStation(cfg, *args.Test, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Metrics.Listen != "" {
		srv := startMetrics(cfg.Metrics.Listen)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = a.run(ctx, *args.Cycles)
	logger.Info("Exiting...")
	return err
}

func startMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("Starting webservice on [%v]...", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Metrics server failed [%v]", err)
		}
	}()
	return srv
}
