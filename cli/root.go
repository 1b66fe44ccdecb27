// Package cli implements riskctl, the one-shot command-line front end.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskengine/config"
	"riskengine/logging"
	"riskengine/ml"
)

type rootOptions struct {
	configPath string
	modelPath  string
	modelType  string
	logLevel   string
}

// NewRootCommand builds the riskctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Score patient profiles against the stroke risk model",
		Long:          "riskctl runs one assessment against the configured model artifact, or checks that the artifact loads.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config.yaml")
	root.PersistentFlags().StringVar(&opts.modelPath, "model", "", "Model artifact path (overrides model.path)")
	root.PersistentFlags().StringVar(&opts.modelType, "model-type", "", "Model kind (overrides model.type)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for stderr output")

	root.AddCommand(newScoreCommand(opts))
	root.AddCommand(newValidateCommand(opts))
	return root
}

// Execute runs riskctl with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// load resolves the configuration with flag overrides applied last.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.modelPath != "" {
		cfg.Model.Path = o.modelPath
	}
	if o.modelType != "" {
		cfg.Model.Type = o.modelType
	}
	// the watcher is a server concern
	cfg.Model.Watch = false

	logger, err := logging.NewConsole(o.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (o *rootOptions) loadModel(ctx context.Context, cmd *cobra.Command) (ml.Scorer, *config.Config, *zap.Logger, error) {
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	scorer, err := ml.LoadModel(ctx, cfg.Model, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load model: %w", err)
	}
	return scorer, cfg, logger, nil
}
