package deploy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// KeyValue is one environment variable entry. Duplicates are passed through
// as given; ECS decides their precedence.
type KeyValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SecretRef is one container secret entry.
type SecretRef struct {
	Name      string `json:"name"`
	ValueFrom string `json:"valueFrom"`
}

// AWSLogsConfig configures the awslogs driver for the primary container.
type AWSLogsConfig struct {
	LogGroup     string
	StreamPrefix string
}

// PrimaryContainer describes the single container an express service runs.
type PrimaryContainer struct {
	Image                 string
	ContainerPort         *int32
	Environment           []KeyValue
	Secrets               []SecretRef
	Command               []string
	AWSLogs               *AWSLogsConfig
	RepositoryCredentials string
}

// NetworkConfig is only present when at least one subnet was supplied.
type NetworkConfig struct {
	Subnets        []string
	SecurityGroups []string
}

// ScalingTarget is only present when any scaling input was supplied.
type ScalingTarget struct {
	MinTasks    *int32
	MaxTasks    *int32
	Metric      string
	TargetValue *float64
}

// ServiceSpec is the normalized request the deployer sends to ECS. Optional
// fields are the zero value (or nil) when their input was absent, and the
// request builder omits them entirely so that ECS applies its own defaults.
// Tags distinguishes "not provided" (nil) from "provided empty" (non-nil,
// empty), which drives the tag diff on the update path.
type ServiceSpec struct {
	ExecutionRoleARN      string
	InfrastructureRoleARN string
	Container             PrimaryContainer
	CPU                   string
	Memory                string
	TaskRoleARN           string
	Network               *NetworkConfig
	ServiceName           string
	Cluster               string // "" when the implicit default cluster applies
	HealthCheckPath       string
	Scaling               *ScalingTarget
	Tags                  []Tag
}

// BuildSpec normalizes the raw inputs into a ServiceSpec. It fails with a
// ValidationError naming the offending input; no other validation is done
// locally because ECS is authoritative for value combinations.
func BuildSpec(cfg *Config) (*ServiceSpec, error) {
	image := strings.TrimSpace(cfg.Image)
	if image == "" {
		return nil, &ValidationError{Field: "image", Reason: "a container image is required"}
	}
	execRole := strings.TrimSpace(cfg.ExecutionRoleARN)
	if execRole == "" {
		return nil, &ValidationError{Field: "execution-role-arn", Reason: "an execution role ARN is required"}
	}
	infraRole := strings.TrimSpace(cfg.InfrastructureRoleARN)
	if infraRole == "" {
		return nil, &ValidationError{Field: "infrastructure-role-arn", Reason: "an infrastructure role ARN is required"}
	}

	spec := &ServiceSpec{
		ExecutionRoleARN:      execRole,
		InfrastructureRoleARN: infraRole,
		Container: PrimaryContainer{
			Image:                 image,
			RepositoryCredentials: cfg.RepositoryCredentials,
		},
		CPU:             cfg.CPU,
		Memory:          cfg.Memory,
		TaskRoleARN:     cfg.TaskRoleARN,
		ServiceName:     cfg.ServiceName,
		HealthCheckPath: cfg.HealthCheckPath,
	}

	if cfg.Cluster != "" && cfg.Cluster != DefaultCluster {
		spec.Cluster = cfg.Cluster
	}

	if cfg.ContainerPort != "" {
		port, err := parseInt32("container-port", cfg.ContainerPort)
		if err != nil {
			return nil, err
		}
		spec.Container.ContainerPort = &port
	}
	if cfg.EnvironmentVariables != "" {
		if err := parseJSONInput("environment-variables", cfg.EnvironmentVariables, &spec.Container.Environment); err != nil {
			return nil, err
		}
	}
	if cfg.Secrets != "" {
		if err := parseJSONInput("secrets", cfg.Secrets, &spec.Container.Secrets); err != nil {
			return nil, err
		}
	}
	if cfg.Command != "" {
		if err := parseJSONInput("command", cfg.Command, &spec.Container.Command); err != nil {
			return nil, err
		}
	}
	if cfg.LogGroup != "" || cfg.LogStreamPrefix != "" {
		spec.Container.AWSLogs = &AWSLogsConfig{
			LogGroup:     cfg.LogGroup,
			StreamPrefix: cfg.LogStreamPrefix,
		}
	}

	if len(cfg.Subnets) > 0 {
		spec.Network = &NetworkConfig{
			Subnets:        cfg.Subnets,
			SecurityGroups: cfg.SecurityGroups,
		}
	}

	if cfg.MinTaskCount != "" || cfg.MaxTaskCount != "" || cfg.AutoScalingMetric != "" || cfg.AutoScalingTargetValue != "" {
		scaling := &ScalingTarget{Metric: cfg.AutoScalingMetric}
		if cfg.MinTaskCount != "" {
			n, err := parseInt32("min-task-count", cfg.MinTaskCount)
			if err != nil {
				return nil, err
			}
			scaling.MinTasks = &n
		}
		if cfg.MaxTaskCount != "" {
			n, err := parseInt32("max-task-count", cfg.MaxTaskCount)
			if err != nil {
				return nil, err
			}
			scaling.MaxTasks = &n
		}
		if cfg.AutoScalingTargetValue != "" {
			f, err := strconv.ParseFloat(cfg.AutoScalingTargetValue, 64)
			if err != nil {
				return nil, &ValidationError{Field: "auto-scaling-target-value", Reason: fmt.Sprintf("%q is not a valid number", cfg.AutoScalingTargetValue)}
			}
			scaling.TargetValue = &f
		}
		spec.Scaling = scaling
	}

	if cfg.TagsProvided {
		tags, err := ParseTags(cfg.Tags)
		if err != nil {
			return nil, err
		}
		spec.Tags = tags
	}

	return spec, nil
}

func parseInt32(field, s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a valid integer", s)}
	}
	return int32(n), nil
}

func parseJSONInput(field, s string, out any) error {
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
