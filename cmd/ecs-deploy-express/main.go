package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/aws-actions/amazon-ecs-deploy-express-service/actions"
	"github.com/aws-actions/amazon-ecs-deploy-express-service/deploy"
)

// githubOutputs forwards deployment outputs to the Actions runtime.
type githubOutputs struct{}

func (githubOutputs) Set(name, value string) error {
	return actions.SetOutput(name, value)
}

func main() {
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	configPath := flag.String("config", "", "optional TOML input file for standalone runs")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "ecs-deploy-express").Logger()

	cfg, err := deploy.LoadConfig(actions.LookupInput, *configPath, logger)
	if err != nil {
		fail(logger, err)
	}

	ctx := context.Background()
	clients, err := deploy.NewAWSClients(ctx, cfg.Region, cfg.EndpointURL)
	if err != nil {
		fail(logger, err)
	}
	if cfg.Region == "" {
		cfg.Region = clients.Region
	}

	d := &deploy.Deployer{
		Platform: deploy.NewPlatform(clients),
		Outputs:  githubOutputs{},
		Logger:   logger,
		Config:   cfg,
	}

	result, err := d.Run(ctx)
	if err != nil {
		fail(logger, err)
	}
	logger.Info().
		Str("service_arn", result.ServiceARN).
		Str("endpoint", result.Endpoint).
		Str("status", result.Status).
		Msg("deployment complete")
}

func fail(logger zerolog.Logger, err error) {
	actions.Fail(err.Error())
	logger.Fatal().Err(err).Msg("deployment failed")
}
