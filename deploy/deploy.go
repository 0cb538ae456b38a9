package deploy

import (
	"context"
	"time"

	"github.com/distribution/reference"
	"github.com/rs/zerolog"
)

// Outputs receives the values the deployment produces. The service ARN is
// emitted as soon as it is known, before stabilization, so a later timeout
// still leaves the caller with a usable identity.
type Outputs interface {
	Set(name, value string) error
}

// Result is the final outcome of a deployment.
type Result struct {
	ServiceARN string
	Endpoint   string
	Status     string
}

// Deployer reconciles one declared service configuration against ECS.
type Deployer struct {
	Platform Platform
	Outputs  Outputs
	Clock    Clock
	Logger   zerolog.Logger
	Config   *Config
}

// Run performs one full reconciliation: build the spec, classify create vs
// update, reconcile tags when asked to, dispatch the request, and wait for
// stability unless waiting is disabled.
func (d *Deployer) Run(ctx context.Context) (*Result, error) {
	spec, err := BuildSpec(d.Config)
	if err != nil {
		return nil, err
	}
	d.checkImageReference(spec.Container.Image)

	computedARN := ""
	if d.Config.ServiceName != "" {
		computedARN, err = ServiceARN(spec.ExecutionRoleARN, d.Config.Region, d.Config.Cluster, d.Config.ServiceName)
		if err != nil {
			return nil, err
		}
	}

	res, err := d.resolve(ctx, d.Config.Cluster, d.Config.ServiceName)
	if err != nil {
		return nil, err
	}

	if res.Exists && d.Config.UpdateTags {
		if err := d.reconcileTags(ctx, computedARN, res.Tags, spec.Tags); err != nil {
			return nil, err
		}
	}

	startedAt := d.clock().Now()
	arn, status, err := d.dispatch(ctx, computedARN, res.Exists, spec)
	if err != nil {
		return nil, err
	}
	d.setOutput("service-arn", arn)

	result := &Result{ServiceARN: arn, Status: status}
	if !d.Config.WaitForStability {
		d.setOutput("status", result.Status)
		return result, nil
	}

	waiter := &Waiter{
		Platform: d.Platform,
		Clock:    d.Clock,
		Timeout:  time.Duration(d.Config.WaitMinutes) * time.Minute,
		Logger:   d.Logger,
	}
	wr, err := waiter.Wait(ctx, arn, startedAt)
	if err != nil {
		return nil, err
	}
	result.Status = wr.Status
	result.Endpoint = wr.Endpoint
	d.setOutput("endpoint", result.Endpoint)
	d.setOutput("status", result.Status)

	d.Logger.Info().Str("service_arn", arn).Str("endpoint", result.Endpoint).Msg("service is stable")
	return result, nil
}

func (d *Deployer) clock() Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return systemClock{}
}

func (d *Deployer) setOutput(name, value string) {
	if d.Outputs == nil {
		return
	}
	if err := d.Outputs.Set(name, value); err != nil {
		d.Logger.Warn().Err(err).Str("output", name).Msg("failed to write output")
	}
}

// checkImageReference warns about image strings that do not parse as a
// container image reference. ECS makes the final call, so this never fails
// the run.
func (d *Deployer) checkImageReference(image string) {
	if _, err := reference.ParseAnyReference(image); err != nil {
		d.Logger.Warn().Str("image", image).Err(err).Msg("image does not look like a valid reference")
	}
}
