package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is one resource tag. Empty values are legal.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParseTags parses the tags input. Text starting with "[" is a JSON array of
// {key,value} objects; anything else is newline-separated key=value pairs.
// Blank input yields an empty, non-nil list.
func ParseTags(text string) ([]Tag, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []Tag{}, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var tags []Tag
		if err := json.Unmarshal([]byte(trimmed), &tags); err != nil {
			return nil, &ValidationError{Field: "tags", Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if tags == nil {
			tags = []Tag{}
		}
		return tags, nil
	}

	tags := []Tag{}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &ValidationError{Field: "tags", Reason: fmt.Sprintf("line %q is not a key=value pair", line)}
		}
		tags = append(tags, Tag{Key: key, Value: strings.TrimSpace(value)})
	}
	return tags, nil
}

// DiffTags computes the minimal mutation that turns current into desired:
// keys to remove and entries to add or overwrite. Entries whose key and value
// already match are untouched.
func DiffTags(current, desired []Tag) (toRemove []string, toAdd []Tag) {
	want := make(map[string]string, len(desired))
	for _, t := range desired {
		want[t.Key] = t.Value
	}
	have := make(map[string]string, len(current))
	for _, t := range current {
		have[t.Key] = t.Value
	}

	for _, t := range current {
		if _, ok := want[t.Key]; !ok {
			toRemove = append(toRemove, t.Key)
		}
	}
	for _, t := range desired {
		if v, ok := have[t.Key]; !ok || v != t.Value {
			toAdd = append(toAdd, t)
		}
	}
	return toRemove, toAdd
}

// reconcileTags applies the tag diff to an existing service, removals first.
// A failed call aborts the deployment: a partially tagged service must not
// silently proceed to the service update.
func (d *Deployer) reconcileTags(ctx context.Context, serviceARN string, current, desired []Tag) error {
	toRemove, toAdd := DiffTags(current, desired)
	if len(toRemove) == 0 && len(toAdd) == 0 {
		d.Logger.Info().Msg("service tags already match; nothing to update")
		return nil
	}

	if len(toRemove) > 0 {
		d.Logger.Info().Strs("keys", toRemove).Msg("removing tags")
		if err := d.Platform.UntagService(ctx, serviceARN, toRemove); err != nil {
			return translateRemoteError("UntagResource", d.Config.Cluster, err)
		}
	}
	if len(toAdd) > 0 {
		d.Logger.Info().Int("count", len(toAdd)).Msg("adding tags")
		if err := d.Platform.TagService(ctx, serviceARN, toAdd); err != nil {
			return translateRemoteError("TagResource", d.Config.Cluster, err)
		}
	}
	return nil
}
