package deploy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// DefaultCluster is the cluster assumed when no cluster input is given.
const DefaultCluster = "default"

// Wait ceiling bounds, in minutes. Out-of-range values are clamped.
const (
	DefaultWaitMinutes = 30
	MaxWaitMinutes     = 360
)

// InputLookup resolves a named input. The bool reports whether the input was
// provided at all, which matters for inputs where "provided empty" and
// "absent" mean different things.
type InputLookup func(name string) (string, bool)

// Config holds the raw deployment inputs. String fields keep their textual
// form; coercion happens in BuildSpec so that validation errors can name the
// offending input.
type Config struct {
	Image                 string
	ExecutionRoleARN      string
	InfrastructureRoleARN string
	ServiceName           string
	Cluster               string

	ContainerPort         string
	EnvironmentVariables  string
	Secrets               string
	Command               string
	LogGroup              string
	LogStreamPrefix       string
	RepositoryCredentials string

	CPU         string
	Memory      string
	TaskRoleARN string

	Subnets        []string
	SecurityGroups []string

	HealthCheckPath        string
	MinTaskCount           string
	MaxTaskCount           string
	AutoScalingMetric      string
	AutoScalingTargetValue string

	Tags         string
	TagsProvided bool

	UpdateTags       bool
	WaitForStability bool
	WaitMinutes      int

	Region      string
	EndpointURL string
}

// fileInputs mirrors the inputs accepted in a TOML file for standalone runs.
// Pointer fields keep the provided/absent distinction for values whose zero
// value is meaningful.
type fileInputs struct {
	Image                   string  `toml:"image"`
	ExecutionRoleARN        string  `toml:"execution-role-arn"`
	InfrastructureRoleARN   string  `toml:"infrastructure-role-arn"`
	ServiceName             string  `toml:"service-name"`
	Cluster                 string  `toml:"cluster"`
	ContainerPort           string  `toml:"container-port"`
	EnvironmentVariables    string  `toml:"environment-variables"`
	Secrets                 string  `toml:"secrets"`
	Command                 string  `toml:"command"`
	LogGroup                string  `toml:"log-group"`
	LogStreamPrefix         string  `toml:"log-stream-prefix"`
	RepositoryCredentials   string  `toml:"repository-credentials"`
	CPU                     string  `toml:"cpu"`
	Memory                  string  `toml:"memory"`
	TaskRoleARN             string  `toml:"task-role-arn"`
	Subnets                 string  `toml:"subnets"`
	SecurityGroups          string  `toml:"security-groups"`
	HealthCheckPath         string  `toml:"health-check-path"`
	MinTaskCount            string  `toml:"min-task-count"`
	MaxTaskCount            string  `toml:"max-task-count"`
	AutoScalingMetric       string  `toml:"auto-scaling-metric"`
	AutoScalingTargetValue  string  `toml:"auto-scaling-target-value"`
	Tags                    *string `toml:"tags"`
	UpdateTags              *bool   `toml:"update-tags"`
	WaitForServiceStability *bool   `toml:"wait-for-service-stability"`
	WaitForMinutes          *int    `toml:"wait-for-minutes"`
	Region                  string  `toml:"region"`
	EndpointURL             string  `toml:"endpoint-url"`
}

// LoadConfig merges inputs from the lookup (GitHub Actions env vars) over an
// optional TOML file. Lookup values win whenever they are non-blank.
func LoadConfig(lookup InputLookup, path string, logger zerolog.Logger) (*Config, error) {
	var file fileInputs
	if path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		logger.Debug().Str("path", path).Msg("loaded inputs from config file")
	}

	str := func(name, fileVal string) string {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		return fileVal
	}

	cfg := &Config{
		Image:                  str("image", file.Image),
		ExecutionRoleARN:       str("execution-role-arn", file.ExecutionRoleARN),
		InfrastructureRoleARN:  str("infrastructure-role-arn", file.InfrastructureRoleARN),
		ServiceName:            str("service-name", str("service", file.ServiceName)),
		Cluster:                str("cluster", file.Cluster),
		ContainerPort:          str("container-port", file.ContainerPort),
		EnvironmentVariables:   str("environment-variables", file.EnvironmentVariables),
		Secrets:                str("secrets", file.Secrets),
		Command:                str("command", file.Command),
		LogGroup:               str("log-group", file.LogGroup),
		LogStreamPrefix:        str("log-stream-prefix", file.LogStreamPrefix),
		RepositoryCredentials:  str("repository-credentials", file.RepositoryCredentials),
		CPU:                    str("cpu", file.CPU),
		Memory:                 str("memory", file.Memory),
		TaskRoleARN:            str("task-role-arn", file.TaskRoleARN),
		Subnets:                splitCSV(str("subnets", file.Subnets)),
		SecurityGroups:         splitCSV(str("security-groups", file.SecurityGroups)),
		HealthCheckPath:        str("health-check-path", file.HealthCheckPath),
		MinTaskCount:           str("min-task-count", file.MinTaskCount),
		MaxTaskCount:           str("max-task-count", file.MaxTaskCount),
		AutoScalingMetric:      str("auto-scaling-metric", file.AutoScalingMetric),
		AutoScalingTargetValue: str("auto-scaling-target-value", file.AutoScalingTargetValue),
		Region:                 str("region", file.Region),
		EndpointURL:            str("endpoint-url", file.EndpointURL),
	}
	if cfg.Cluster == "" {
		cfg.Cluster = DefaultCluster
	}

	if v, ok := lookup("tags"); ok {
		cfg.Tags, cfg.TagsProvided = v, true
	} else if file.Tags != nil {
		cfg.Tags, cfg.TagsProvided = *file.Tags, true
	}

	var err error
	cfg.UpdateTags, err = boolInput(lookup, "update-tags", file.UpdateTags, false)
	if err != nil {
		return nil, err
	}
	cfg.WaitForStability, err = boolInput(lookup, "wait-for-service-stability", file.WaitForServiceStability, true)
	if err != nil {
		return nil, err
	}

	cfg.WaitMinutes = DefaultWaitMinutes
	if v, ok := lookup("wait-for-minutes"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "wait-for-minutes", Reason: fmt.Sprintf("%q is not a valid integer", v)}
		}
		cfg.WaitMinutes = n
	} else if file.WaitForMinutes != nil {
		cfg.WaitMinutes = *file.WaitForMinutes
	}
	if cfg.WaitMinutes < 1 {
		logger.Warn().Int("wait-for-minutes", cfg.WaitMinutes).Msgf("wait-for-minutes below 1; using %d", DefaultWaitMinutes)
		cfg.WaitMinutes = DefaultWaitMinutes
	}
	if cfg.WaitMinutes > MaxWaitMinutes {
		logger.Warn().Int("wait-for-minutes", cfg.WaitMinutes).Msgf("wait-for-minutes above the %d minute ceiling; clamping", MaxWaitMinutes)
		cfg.WaitMinutes = MaxWaitMinutes
	}

	return cfg, nil
}

func boolInput(lookup InputLookup, name string, fileVal *bool, def bool) (bool, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		if fileVal != nil {
			return *fileVal, nil
		}
		return def, nil
	}
	switch strings.ToLower(v) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ValidationError{Field: name, Reason: fmt.Sprintf("%q is not a boolean", v)}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
