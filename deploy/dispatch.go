package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// dispatch issues the create or update call and returns the canonical
// service ARN plus the status reported in the response. The response ARN is
// authoritative (it is the only source on a create without a service name);
// the locally computed ARN is the fallback.
func (d *Deployer) dispatch(ctx context.Context, computedARN string, exists bool, spec *ServiceSpec) (arn, status string, err error) {
	var svc *ExpressService
	op := "CreateService"
	if exists {
		op = "UpdateService"
		d.Logger.Info().Str("service_arn", computedARN).Msg("updating service")
		svc, err = d.Platform.UpdateService(ctx, computedARN, spec)
	} else {
		d.Logger.Info().Str("image", spec.Container.Image).Msg("creating service")
		svc, err = d.Platform.CreateService(ctx, spec)
	}
	if err != nil {
		return "", "", translateRemoteError(op, d.Config.Cluster, err)
	}

	if svc != nil {
		status = svc.Status
		if svc.ARN != "" {
			return svc.ARN, status, nil
		}
	}
	if computedARN == "" {
		return "", "", fmt.Errorf("%s response did not include a service ARN", op)
	}
	return computedARN, status, nil
}

// translateRemoteError rewraps well-known ECS error classes with actionable
// guidance. Anything unrecognized propagates unchanged.
func translateRemoteError(op, cluster string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "AccessDeniedException", "AccessDenied":
		return &RequestError{
			Op:       op,
			Guidance: "verify that the execution role and the infrastructure role grant the permissions this deployment needs",
			Err:      err,
		}
	case "InvalidParameterException":
		return &RequestError{
			Op:       op,
			Guidance: "check the service configuration inputs for invalid values",
			Err:      err,
		}
	case "ClusterNotFoundException":
		return &RequestError{
			Op:       op,
			Guidance: fmt.Sprintf("cluster %q was not found; confirm the cluster name and the AWS region", cluster),
			Err:      err,
		}
	}
	return err
}
