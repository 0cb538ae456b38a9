package deploy

import (
	"fmt"
	"strings"
)

// ServiceARN builds the canonical ARN for a named service. The partition and
// account ID come from the execution role ARN, so the result is a pure
// function of its inputs and identical across retried invocations.
func ServiceARN(executionRoleARN, region, cluster, serviceName string) (string, error) {
	parts := strings.Split(executionRoleARN, ":")
	if len(parts) < 6 || parts[0] != "arn" || parts[1] == "" || parts[4] == "" {
		return "", &ValidationError{Field: "execution-role-arn", Reason: fmt.Sprintf("%q is not an IAM role ARN", executionRoleARN)}
	}
	if cluster == "" {
		cluster = DefaultCluster
	}
	return fmt.Sprintf("arn:%s:ecs:%s:%s:service/%s/%s", parts[1], region, parts[4], cluster, serviceName), nil
}
