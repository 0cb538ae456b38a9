package deploy

import (
	"context"
	"time"
)

// Service lifecycle statuses reported by ECS.
const (
	ServiceStatusCreating = "CREATING"
	ServiceStatusActive   = "ACTIVE"
	ServiceStatusDraining = "DRAINING"
	ServiceStatusInactive = "INACTIVE"
)

// Service deployment statuses reported by ECS.
const (
	DeploymentStatusPending            = "PENDING"
	DeploymentStatusInProgress         = "IN_PROGRESS"
	DeploymentStatusSuccessful         = "SUCCESSFUL"
	DeploymentStatusFailed             = "FAILED"
	DeploymentStatusStopped            = "STOPPED"
	DeploymentStatusRollbackInProgress = "ROLLBACK_IN_PROGRESS"
	DeploymentStatusRollbackSuccessful = "ROLLBACK_SUCCESSFUL"
	DeploymentStatusRollbackFailed     = "ROLLBACK_FAILED"
)

// RemoteService is the projection of a classic DescribeServices record used
// by the existence check.
type RemoteService struct {
	ARN    string
	Status string
	Tags   []Tag
}

// ExpressService is the projection of an express gateway service record.
type ExpressService struct {
	ARN            string
	Status         string
	Configurations []ServiceConfiguration
}

// ServiceConfiguration is one active configuration of an express service.
type ServiceConfiguration struct {
	IngressPaths []IngressPath
}

// IngressPath is one public ingress of a service configuration.
type IngressPath struct {
	Endpoint string
}

// Deployment is the projection of a service deployment record.
type Deployment struct {
	ARN    string
	Status string
	Reason string
}

// Platform is the ECS surface the deployer talks to. Describe calls return
// (nil, nil) when the service or cluster does not exist, so callers never
// have to sniff error strings to tell "not found" from a real failure.
type Platform interface {
	DescribeService(ctx context.Context, cluster, name string) (*RemoteService, error)
	DescribeExpressService(ctx context.Context, serviceARN string) (*ExpressService, error)
	ListDeployments(ctx context.Context, serviceARN string, createdAfter time.Time) ([]string, error)
	DescribeDeployment(ctx context.Context, deploymentARN string) (*Deployment, error)
	CreateService(ctx context.Context, spec *ServiceSpec) (*ExpressService, error)
	UpdateService(ctx context.Context, serviceARN string, spec *ServiceSpec) (*ExpressService, error)
	TagService(ctx context.Context, serviceARN string, tags []Tag) error
	UntagService(ctx context.Context, serviceARN string, keys []string) error
}
