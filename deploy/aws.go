package deploy

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
)

// AWSClients holds the AWS SDK clients plus the resolved region.
type AWSClients struct {
	ECS    *awsecs.Client
	Region string
}

// NewAWSClients initializes AWS SDK clients from config. A non-empty
// endpointURL switches to simulator mode with static test credentials.
func NewAWSClients(ctx context.Context, region, endpointURL string) (*AWSClients, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if endpointURL != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := awsecs.NewFromConfig(cfg)
	if endpointURL != "" {
		client = awsecs.NewFromConfig(cfg, func(o *awsecs.Options) { o.BaseEndpoint = aws.String(endpointURL) })
	}
	return &AWSClients{ECS: client, Region: cfg.Region}, nil
}

// awsPlatform implements Platform over the ECS client. All express-mode
// request mapping lives here; the rest of the package only sees the domain
// projections.
type awsPlatform struct {
	ecs *awsecs.Client
}

// NewPlatform wraps the AWS clients in the Platform interface.
func NewPlatform(clients *AWSClients) Platform {
	return &awsPlatform{ecs: clients.ECS}
}

func (p *awsPlatform) DescribeService(ctx context.Context, cluster, name string) (*RemoteService, error) {
	out, err := p.ecs.DescribeServices(ctx, &awsecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{name},
		Include:  []ecstypes.ServiceField{ecstypes.ServiceFieldTags},
	})
	if err != nil {
		var clusterNotFound *ecstypes.ClusterNotFoundException
		var serviceNotFound *ecstypes.ServiceNotFoundException
		if errors.As(err, &clusterNotFound) || errors.As(err, &serviceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(out.Services) == 0 {
		// The missing service is reported in Failures with reason MISSING.
		return nil, nil
	}
	svc := out.Services[0]
	return &RemoteService{
		ARN:    aws.ToString(svc.ServiceArn),
		Status: aws.ToString(svc.Status),
		Tags:   fromSDKTags(svc.Tags),
	}, nil
}

func (p *awsPlatform) DescribeExpressService(ctx context.Context, serviceARN string) (*ExpressService, error) {
	out, err := p.ecs.DescribeExpressGatewayService(ctx, &awsecs.DescribeExpressGatewayServiceInput{
		ServiceArn: aws.String(serviceARN),
	})
	if err != nil {
		return nil, err
	}
	return fromSDKExpressService(out.Service), nil
}

func (p *awsPlatform) ListDeployments(ctx context.Context, serviceARN string, createdAfter time.Time) ([]string, error) {
	out, err := p.ecs.ListServiceDeployments(ctx, &awsecs.ListServiceDeploymentsInput{
		Service:   aws.String(serviceARN),
		CreatedAt: &ecstypes.CreatedAt{After: aws.Time(createdAfter)},
	})
	if err != nil {
		return nil, err
	}
	arns := make([]string, 0, len(out.ServiceDeployments))
	for _, d := range out.ServiceDeployments {
		arns = append(arns, aws.ToString(d.ServiceDeploymentArn))
	}
	return arns, nil
}

func (p *awsPlatform) DescribeDeployment(ctx context.Context, deploymentARN string) (*Deployment, error) {
	out, err := p.ecs.DescribeServiceDeployments(ctx, &awsecs.DescribeServiceDeploymentsInput{
		ServiceDeploymentArns: []string{deploymentARN},
	})
	if err != nil {
		return nil, err
	}
	if len(out.ServiceDeployments) == 0 {
		return nil, errors.New("deployment not returned by DescribeServiceDeployments")
	}
	dep := out.ServiceDeployments[0]
	return &Deployment{
		ARN:    aws.ToString(dep.ServiceDeploymentArn),
		Status: string(dep.Status),
		Reason: aws.ToString(dep.StatusReason),
	}, nil
}

func (p *awsPlatform) CreateService(ctx context.Context, spec *ServiceSpec) (*ExpressService, error) {
	in := &awsecs.CreateExpressGatewayServiceInput{
		ExecutionRoleArn:      aws.String(spec.ExecutionRoleARN),
		InfrastructureRoleArn: aws.String(spec.InfrastructureRoleARN),
		PrimaryContainer:      toSDKContainer(&spec.Container),
	}
	applyCommonFields(spec, &in.Cpu, &in.Memory, &in.TaskRoleArn, &in.HealthCheckPath)
	if spec.ServiceName != "" {
		in.ServiceName = aws.String(spec.ServiceName)
	}
	if spec.Cluster != "" {
		in.Cluster = aws.String(spec.Cluster)
	}
	in.NetworkConfiguration = toSDKNetwork(spec.Network)
	in.ScalingTarget = toSDKScaling(spec.Scaling)
	if spec.Tags != nil {
		in.Tags = toSDKTags(spec.Tags)
	}

	out, err := p.ecs.CreateExpressGatewayService(ctx, in)
	if err != nil {
		return nil, err
	}
	return fromSDKExpressService(out.Service), nil
}

func (p *awsPlatform) UpdateService(ctx context.Context, serviceARN string, spec *ServiceSpec) (*ExpressService, error) {
	// The update API has no infrastructure role field; the role set at
	// create time sticks.
	in := &awsecs.UpdateExpressGatewayServiceInput{
		ServiceArn:       aws.String(serviceARN),
		ExecutionRoleArn: aws.String(spec.ExecutionRoleARN),
		PrimaryContainer: toSDKContainer(&spec.Container),
	}
	applyCommonFields(spec, &in.Cpu, &in.Memory, &in.TaskRoleArn, &in.HealthCheckPath)
	in.NetworkConfiguration = toSDKNetwork(spec.Network)
	in.ScalingTarget = toSDKScaling(spec.Scaling)

	out, err := p.ecs.UpdateExpressGatewayService(ctx, in)
	if err != nil {
		return nil, err
	}
	return fromSDKUpdatedService(out.Service), nil
}

func (p *awsPlatform) TagService(ctx context.Context, serviceARN string, tags []Tag) error {
	_, err := p.ecs.TagResource(ctx, &awsecs.TagResourceInput{
		ResourceArn: aws.String(serviceARN),
		Tags:        toSDKTags(tags),
	})
	return err
}

func (p *awsPlatform) UntagService(ctx context.Context, serviceARN string, keys []string) error {
	_, err := p.ecs.UntagResource(ctx, &awsecs.UntagResourceInput{
		ResourceArn: aws.String(serviceARN),
		TagKeys:     keys,
	})
	return err
}

// applyCommonFields sets the optional scalar fields shared by the create and
// update inputs, leaving absent ones nil so ECS applies its own defaults.
func applyCommonFields(spec *ServiceSpec, cpu, memory, taskRole, healthCheck **string) {
	if spec.CPU != "" {
		*cpu = aws.String(spec.CPU)
	}
	if spec.Memory != "" {
		*memory = aws.String(spec.Memory)
	}
	if spec.TaskRoleARN != "" {
		*taskRole = aws.String(spec.TaskRoleARN)
	}
	if spec.HealthCheckPath != "" {
		*healthCheck = aws.String(spec.HealthCheckPath)
	}
}

func toSDKContainer(c *PrimaryContainer) *ecstypes.ExpressGatewayContainer {
	out := &ecstypes.ExpressGatewayContainer{
		Image:         aws.String(c.Image),
		ContainerPort: c.ContainerPort,
		Command:       c.Command,
	}
	for _, kv := range c.Environment {
		out.Environment = append(out.Environment, ecstypes.KeyValuePair{
			Name:  aws.String(kv.Name),
			Value: aws.String(kv.Value),
		})
	}
	for _, s := range c.Secrets {
		out.Secrets = append(out.Secrets, ecstypes.Secret{
			Name:      aws.String(s.Name),
			ValueFrom: aws.String(s.ValueFrom),
		})
	}
	if c.AWSLogs != nil {
		logs := &ecstypes.ExpressGatewayServiceAwsLogsConfiguration{}
		if c.AWSLogs.LogGroup != "" {
			logs.LogGroup = aws.String(c.AWSLogs.LogGroup)
		}
		if c.AWSLogs.StreamPrefix != "" {
			logs.LogStreamPrefix = aws.String(c.AWSLogs.StreamPrefix)
		}
		out.AwsLogsConfiguration = logs
	}
	if c.RepositoryCredentials != "" {
		out.RepositoryCredentials = &ecstypes.ExpressGatewayRepositoryCredentials{
			CredentialsParameter: aws.String(c.RepositoryCredentials),
		}
	}
	return out
}

func toSDKNetwork(n *NetworkConfig) *ecstypes.ExpressGatewayServiceNetworkConfiguration {
	if n == nil {
		return nil
	}
	return &ecstypes.ExpressGatewayServiceNetworkConfiguration{
		Subnets:        n.Subnets,
		SecurityGroups: n.SecurityGroups,
	}
}

func toSDKScaling(s *ScalingTarget) *ecstypes.ExpressGatewayScalingTarget {
	if s == nil {
		return nil
	}
	out := &ecstypes.ExpressGatewayScalingTarget{
		MinTaskCount: s.MinTasks,
		MaxTaskCount: s.MaxTasks,
	}
	if s.Metric != "" {
		out.AutoScalingMetric = ecstypes.ExpressGatewayServiceScalingMetric(s.Metric)
	}
	if s.TargetValue != nil {
		// The API only accepts whole-number targets; fractional values are
		// truncated.
		out.AutoScalingTargetValue = aws.Int32(int32(*s.TargetValue))
	}
	return out
}

func toSDKTags(tags []Tag) []ecstypes.Tag {
	out := make([]ecstypes.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, ecstypes.Tag{Key: aws.String(t.Key), Value: aws.String(t.Value)})
	}
	return out
}

func fromSDKTags(tags []ecstypes.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, Tag{Key: aws.ToString(t.Key), Value: aws.ToString(t.Value)})
	}
	return out
}

func fromSDKExpressService(svc *ecstypes.ECSExpressGatewayService) *ExpressService {
	if svc == nil {
		return nil
	}
	out := &ExpressService{
		ARN:    aws.ToString(svc.ServiceArn),
		Status: statusCode(svc.Status),
	}
	for _, cfg := range svc.ActiveConfigurations {
		conf := ServiceConfiguration{}
		for _, p := range cfg.IngressPaths {
			conf.IngressPaths = append(conf.IngressPaths, IngressPath{Endpoint: aws.ToString(p.Endpoint)})
		}
		out.Configurations = append(out.Configurations, conf)
	}
	return out
}

// fromSDKUpdatedService handles the update response, which carries a
// different service shape than create and describe.
func fromSDKUpdatedService(svc *ecstypes.UpdatedExpressGatewayService) *ExpressService {
	if svc == nil {
		return nil
	}
	return &ExpressService{
		ARN:    aws.ToString(svc.ServiceArn),
		Status: statusCode(svc.Status),
	}
}

func statusCode(s *ecstypes.ExpressGatewayServiceStatus) string {
	if s == nil {
		return ""
	}
	return string(s.StatusCode)
}
