package deploy

import (
	"context"
	"fmt"
	"strings"
)

// Resolution classifies the target service as create (Exists false) or
// update (Exists true, with the service's current tags for diffing).
type Resolution struct {
	Exists bool
	Tags   []Tag
}

// resolve determines whether the named service already exists. A blank name
// short-circuits without any remote call: ECS will assign one on create. A
// record in INACTIVE status counts as absent, since the service is eligible
// for re-creation under the same name.
func (d *Deployer) resolve(ctx context.Context, cluster, name string) (Resolution, error) {
	if strings.TrimSpace(name) == "" {
		d.Logger.Debug().Msg("no service name given; a new service will be created")
		return Resolution{}, nil
	}

	svc, err := d.Platform.DescribeService(ctx, cluster, name)
	if err != nil {
		return Resolution{}, fmt.Errorf("describe service %s/%s: %w", cluster, name, err)
	}
	if svc == nil {
		d.Logger.Info().Str("service", name).Str("cluster", cluster).Msg("service not found; it will be created")
		return Resolution{}, nil
	}
	if svc.Status == ServiceStatusInactive {
		d.Logger.Info().Str("service", name).Msg("service is INACTIVE; it will be re-created")
		return Resolution{}, nil
	}

	d.Logger.Info().Str("service", name).Str("status", svc.Status).Msg("service exists; it will be updated")
	return Resolution{Exists: true, Tags: svc.Tags}, nil
}
