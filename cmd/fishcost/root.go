package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/fishcost/internal/config"
	"github.com/Simplici0/fishcost/internal/costing"
	"github.com/Simplici0/fishcost/internal/logger"
)

type rootOptions struct {
	scenarioPath string
	logLevel     string
	log          *zap.Logger
	plant        config.PlantConfig
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fishcost",
		Short:         "Cost, margin and break-even calculator for fish processing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(opts.logLevel, false)
			if err != nil {
				return err
			}
			opts.log = log
			if opts.plant, err = config.LoadPlant(); err != nil {
				return fmt.Errorf("load plant config: %w", err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.scenarioPath, "scenario", "f", "", "YAML scenario file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newEvaluateCmd(opts),
		newMatrixCmd(opts),
		newReverseCmd(opts),
		newDealCmd(opts),
	)
	return cmd
}

// loadScenario reads the scenario named by --scenario and fills plant constants from the
// environment. Unknown keys are rejected.
func (o *rootOptions) loadScenario() (costing.Scenario, error) {
	if o.scenarioPath == "" {
		return costing.Scenario{}, fmt.Errorf("--scenario is required")
	}
	f, err := os.Open(o.scenarioPath)
	if err != nil {
		return costing.Scenario{}, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	var s costing.Scenario
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return costing.Scenario{}, fmt.Errorf("parse scenario %s: %w", o.scenarioPath, err)
	}
	o.logger().Debug("scenario loaded", zap.String("path", o.scenarioPath))
	return o.plant.Apply(s), nil
}

func (o *rootOptions) logger() *zap.Logger {
	if o.log == nil {
		return zap.NewNop()
	}
	return o.log
}
