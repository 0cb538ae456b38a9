package deploy

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPollInterval is the cadence between stability checks.
const DefaultPollInterval = 15 * time.Second

// Clock abstracts wall-clock time and sleeping so the wait loop can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

type waitState int

const (
	stateWaitServiceActive waitState = iota
	stateLocateDeployment
	stateWaitDeploymentTerminal
)

// Waiter polls ECS until the service and its deployment stabilize.
type Waiter struct {
	Platform Platform
	Clock    Clock
	Interval time.Duration
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// WaitResult is the outcome of a successful stabilization.
type WaitResult struct {
	Status   string
	Endpoint string
}

// Wait blocks until the service is ACTIVE and the first deployment created
// at or after startedAt reaches a terminal status. The createdAfter filter
// guards against acting on a stale deployment record from an eventually
// consistent listing. Once a deployment is located its ARN is pinned for the
// remainder of the wait.
//
// Transient query errors are logged and retried on the next tick; only a
// terminal bad service status, a failed deployment, or the wall-clock
// ceiling end the wait early.
func (w *Waiter) Wait(ctx context.Context, serviceARN string, startedAt time.Time) (*WaitResult, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clock := w.Clock
	if clock == nil {
		clock = systemClock{}
	}
	deadline := clock.Now().Add(w.Timeout)

	state := stateWaitServiceActive
	deploymentARN := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !clock.Now().Before(deadline) {
			return nil, &TimeoutError{After: w.Timeout}
		}

		switch state {
		case stateWaitServiceActive, stateLocateDeployment:
			svc, err := w.Platform.DescribeExpressService(ctx, serviceARN)
			if err != nil {
				w.Logger.Warn().Err(err).Msg("describe service failed; retrying")
				break
			}
			if svc == nil {
				w.Logger.Info().Msg("service not visible yet; retrying")
				break
			}
			if svc.Status == ServiceStatusInactive || svc.Status == ServiceStatusDraining {
				return nil, &StabilizationError{Kind: "service", ID: serviceARN, Status: svc.Status}
			}
			if svc.Status != ServiceStatusActive {
				w.Logger.Info().Str("status", svc.Status).Msg("waiting for service to become ACTIVE")
				state = stateWaitServiceActive
				break
			}
			state = stateLocateDeployment

			arns, err := w.Platform.ListDeployments(ctx, serviceARN, startedAt)
			if err != nil {
				w.Logger.Warn().Err(err).Msg("list deployments failed; retrying")
				break
			}
			if len(arns) == 0 {
				w.Logger.Info().Msg("deployment not visible yet; retrying")
				break
			}
			deploymentARN = arns[0]
			state = stateWaitDeploymentTerminal
			w.Logger.Info().Str("deployment", deploymentARN).Msg("tracking deployment")
			continue

		case stateWaitDeploymentTerminal:
			dep, err := w.Platform.DescribeDeployment(ctx, deploymentARN)
			if err != nil {
				w.Logger.Warn().Err(err).Msg("describe deployment failed; retrying")
				break
			}
			if dep == nil {
				w.Logger.Info().Str("deployment", deploymentARN).Msg("deployment not visible yet; retrying")
				break
			}
			switch {
			case dep.Status == DeploymentStatusSuccessful:
				svc, err := w.Platform.DescribeExpressService(ctx, serviceARN)
				if err != nil {
					w.Logger.Warn().Err(err).Msg("describe service failed after successful deployment; retrying")
					break
				}
				if svc == nil {
					w.Logger.Info().Msg("service not visible after successful deployment; retrying")
					break
				}
				return &WaitResult{Status: svc.Status, Endpoint: serviceEndpoint(svc)}, nil
			case isDeploymentFailure(dep.Status):
				return nil, &StabilizationError{Kind: "deployment", ID: deploymentARN, Status: dep.Status, Reason: dep.Reason}
			default:
				w.Logger.Info().Str("deployment", deploymentARN).Str("status", dep.Status).Msg("deployment in progress")
			}
		}

		clock.Sleep(interval)
	}
}

func isDeploymentFailure(status string) bool {
	switch status {
	case DeploymentStatusFailed, DeploymentStatusStopped,
		DeploymentStatusRollbackSuccessful, DeploymentStatusRollbackFailed:
		return true
	}
	return false
}

// serviceEndpoint extracts the public endpoint: the first ingress path of
// the first active configuration, when the service has one.
func serviceEndpoint(svc *ExpressService) string {
	if len(svc.Configurations) == 0 || len(svc.Configurations[0].IngressPaths) == 0 {
		return ""
	}
	return svc.Configurations[0].IngressPaths[0].Endpoint
}
