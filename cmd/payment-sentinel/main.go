/*
 * Copyright (C) 2025 Payops Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "net/http/pprof"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/payops-labs/payment-sentinel/pkg/agent"
	"github.com/payops-labs/payment-sentinel/pkg/config"
	"github.com/payops-labs/payment-sentinel/pkg/ingest"
	"github.com/payops-labs/payment-sentinel/pkg/server"
	"github.com/payops-labs/payment-sentinel/pkg/utils"
)

var (
	buildVersion      = "unknown"
	buildDate         = "unknown"
	cfgFile           string
	logLevel          string
	envPrefix         = "PAYMENT-SENTINEL"
	defaultConfigName = ".payment-sentinel"
	opts              config.Options
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "payment-sentinel",
	Short: "Observe payment traffic and autonomously contain failure patterns",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	v := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		// Search config in home directory with name ".payment-sentinel" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(defaultConfigName)
	}

	// Read environment variables that match prefix
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// If a config file is found, read it in.
	cfgErr := v.ReadInConfig()

	bindFlags(rootCmd, v)

	// initialize logger
	initLogger()

	if cfgErr != nil {
		log.Errorf("Read config error: %v", cfgErr)
	}
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

func dumpConfig(opts *config.Options) {
	configAsJSON, err := json.MarshalIndent(opts, "", "    ")
	if err != nil {
		panic(fmt.Sprintf("error dumping config: %v", err))
	}
	fmt.Printf("Using configuration:\n%s\n", configAsJSON)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, ".") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, ".", "_"))
			_ = v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			switch val.(type) {
			case bool, uint, string, int32, int16, int8, int, uint32, uint64, int64, float64, float32, []string, []int:
				_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			default:
				var jsonNew = jsoniter.ConfigCompatibleWithStandardLibrary
				b, err := jsonNew.Marshal(&val)
				if err != nil {
					log.Fatalf("can't parse flag %s into json with value %v got error %s", f.Name, val, err)
					return
				}
				_ = cmd.Flags().Set(f.Name, string(b))
			}
		}
	})
}

func initFlags() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s)", defaultConfigName))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().StringVar(&opts.Agent, "agent", "", "json overriding the default agent configuration")
	rootCmd.PersistentFlags().StringVar(&opts.Ingest, "ingest", "", "json selecting and configuring the transaction source")
	rootCmd.PersistentFlags().StringVar(&opts.CycleInterval, "cycle-interval", "", "control loop period (default 30s)")
	rootCmd.PersistentFlags().StringVar(&opts.Server.Address, "server.address", "0.0.0.0", "API server address")
	rootCmd.PersistentFlags().StringVar(&opts.Server.Port, "server.port", "8090", "API server port")
	rootCmd.PersistentFlags().StringVar(&opts.Health.Address, "health.address", "0.0.0.0", "Health server address")
	rootCmd.PersistentFlags().StringVar(&opts.Health.Port, "health.port", "8080", "Health server port")
	rootCmd.PersistentFlags().IntVar(&opts.Profile.Port, "profile.port", 0, "Go pprof tool port (default: disabled)")
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func buildIngester(cfg *config.Config, clk clock.Clock) (ingest.Ingester, error) {
	switch cfg.Ingest.Type {
	case "":
		return nil, nil
	case "file":
		return ingest.NewIngestFile(cfg.Ingest.File, clk)
	case "kafka":
		return ingest.NewIngestKafka(cfg.Ingest.Kafka)
	case "synthetic":
		return ingest.NewIngestSynthetic(cfg.Ingest.Synthetic, clk)
	default:
		return nil, fmt.Errorf("unknown ingest type %q", cfg.Ingest.Type)
	}
}

func run() {
	// Initial log message
	fmt.Printf("Starting %s:\n=====\nBuild version: %s\nBuild date: %s\n\n", filepath.Base(os.Args[0]), buildVersion, buildDate)

	// Dump configuration
	dumpConfig(&opts)

	cfg, err := config.ParseConfig(&opts)
	if err != nil {
		log.Errorf("error in parsing config: %v", err)
		os.Exit(1)
	}

	// Setup (threads) exit manager
	utils.SetupElegantExit()

	clk := clock.New()
	sentinel := agent.NewAgent(cfg.Agent, clk, nil)

	ingester, err := buildIngester(cfg, clk)
	if err != nil {
		log.Errorf("failed to initialize ingest: %s", err)
		os.Exit(1)
	}

	if opts.Profile.Port != 0 {
		go func() {
			log.WithField("port", opts.Profile.Port).Info("starting PProf HTTP listener")
			log.WithError(http.ListenAndServe(fmt.Sprintf(":%d", opts.Profile.Port), nil)).
				Error("PProf HTTP listener stopped working")
		}()
	}

	// Start health report server
	server.NewHealthServer(net.JoinHostPort(opts.Health.Address, opts.Health.Port), sentinel)

	// Start API + metrics server
	apiServer := server.New(net.JoinHostPort(opts.Server.Address, opts.Server.Port), sentinel)
	go apiServer.Serve()

	ctx, cancel := context.WithCancel(context.Background())
	exitChan := make(chan struct{})
	utils.RegisterExitChannel(exitChan)
	go func() {
		<-exitChan
		cancel()
	}()

	if ingester != nil {
		go func() {
			if err := ingester.Ingest(ctx, sentinel); err != nil {
				log.Errorf("ingest stopped: %v", err)
			}
		}()
	}

	// Run the control loop until an exit signal arrives
	sentinel.Run(ctx, cfg.CycleInterval)

	// Give all threads a chance to exit and then exit the process
	time.Sleep(time.Second)
	log.Debugf("exiting main run")
	os.Exit(0)
}
