package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func tagMap(tags []Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.Key] = t.Value
	}
	return m
}

func TestParseTagsJSON(t *testing.T) {
	tags, err := ParseTags(`[{"key":"team","value":"infra"},{"key":"env","value":""}]`)
	if err != nil {
		t.Fatal(err)
	}
	m := tagMap(tags)
	if m["team"] != "infra" {
		t.Errorf("team: %q", m["team"])
	}
	if v, ok := m["env"]; !ok || v != "" {
		t.Error("empty tag value should be legal")
	}
}

func TestParseTagsKeyValueLines(t *testing.T) {
	tags, err := ParseTags("team=infra\n\nenv=\ncost-center=123=456\n")
	if err != nil {
		t.Fatal(err)
	}
	m := tagMap(tags)
	if m["team"] != "infra" || m["env"] != "" {
		t.Errorf("parsed: %v", m)
	}
	// Only the first separator splits.
	if m["cost-center"] != "123=456" {
		t.Errorf("cost-center: %q", m["cost-center"])
	}
}

func TestParseTagsSurroundingWhitespace(t *testing.T) {
	tags, err := ParseTags("\n\n  team=infra\nenv=prod  \n\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("parsed %d tags: %v", len(tags), tags)
	}
	m := tagMap(tags)
	if m["team"] != "infra" || m["env"] != "prod" {
		t.Errorf("parsed: %v", m)
	}
}

func TestParseTagsFormatsAgree(t *testing.T) {
	fromJSON, err := ParseTags(`[{"key":"a","value":"1"},{"key":"b","value":"2"}]`)
	if err != nil {
		t.Fatal(err)
	}
	fromLines, err := ParseTags("b=2\na=1\n")
	if err != nil {
		t.Fatal(err)
	}
	jm, lm := tagMap(fromJSON), tagMap(fromLines)
	if len(jm) != len(lm) {
		t.Fatalf("length mismatch: %v vs %v", jm, lm)
	}
	for k, v := range jm {
		if lm[k] != v {
			t.Errorf("key %q: %q vs %q", k, v, lm[k])
		}
	}
}

func TestParseTagsErrors(t *testing.T) {
	if _, err := ParseTags("no-separator-here"); err == nil {
		t.Error("line without separator should fail")
	}
	if _, err := ParseTags("=value"); err == nil {
		t.Error("empty key should fail")
	}
	if _, err := ParseTags(`[{"key":`); err == nil {
		t.Error("malformed JSON should fail")
	}
}

func TestParseTagsBlank(t *testing.T) {
	tags, err := ParseTags("")
	if err != nil {
		t.Fatal(err)
	}
	if tags == nil || len(tags) != 0 {
		t.Errorf("blank input should yield an empty list, got %v", tags)
	}
}

func TestDiffTagsMinimal(t *testing.T) {
	current := []Tag{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}}
	desired := []Tag{{Key: "B", Value: "2"}, {Key: "C", Value: "3"}}

	toRemove, toAdd := DiffTags(current, desired)
	if len(toRemove) != 1 || toRemove[0] != "A" {
		t.Errorf("toRemove: %v", toRemove)
	}
	if len(toAdd) != 1 || toAdd[0].Key != "C" || toAdd[0].Value != "3" {
		t.Errorf("toAdd: %v", toAdd)
	}
}

func TestDiffTagsValueChange(t *testing.T) {
	current := []Tag{{Key: "A", Value: "1"}}
	desired := []Tag{{Key: "A", Value: "2"}}

	toRemove, toAdd := DiffTags(current, desired)
	if len(toRemove) != 0 {
		t.Errorf("changed value must not remove the key: %v", toRemove)
	}
	if len(toAdd) != 1 || toAdd[0].Value != "2" {
		t.Errorf("toAdd: %v", toAdd)
	}
}

func TestDiffTagsNilDesired(t *testing.T) {
	toRemove, toAdd := DiffTags([]Tag{{Key: "A", Value: "1"}}, nil)
	if len(toRemove) != 1 || len(toAdd) != 0 {
		t.Errorf("nil desired should remove everything: remove=%v add=%v", toRemove, toAdd)
	}
}

func testDeployer(platform Platform) *Deployer {
	return &Deployer{
		Platform: platform,
		Logger:   zerolog.Nop(),
		Config:   minimalConfig(),
	}
}

func TestReconcileTagsNoop(t *testing.T) {
	fake := &fakePlatform{}
	d := testDeployer(fake)

	same := []Tag{{Key: "A", Value: "1"}}
	if err := d.reconcileTags(context.Background(), "arn:svc", same, same); err != nil {
		t.Fatal(err)
	}
	if len(fake.calls) != 0 {
		t.Errorf("no-op diff must make no remote calls, got %v", fake.calls)
	}
}

func TestReconcileTagsRemovalBeforeAddition(t *testing.T) {
	fake := &fakePlatform{
		untagService: func(arn string, keys []string) error { return nil },
		tagService:   func(arn string, tags []Tag) error { return nil },
	}
	d := testDeployer(fake)

	current := []Tag{{Key: "A", Value: "1"}}
	desired := []Tag{{Key: "B", Value: "2"}}
	if err := d.reconcileTags(context.Background(), "arn:svc", current, desired); err != nil {
		t.Fatal(err)
	}
	if len(fake.calls) != 2 || fake.calls[0] != "UntagService" || fake.calls[1] != "TagService" {
		t.Errorf("expected untag then tag, got %v", fake.calls)
	}
}

func TestReconcileTagsFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakePlatform{
		untagService: func(arn string, keys []string) error { return boom },
	}
	d := testDeployer(fake)

	err := d.reconcileTags(context.Background(), "arn:svc", []Tag{{Key: "A"}}, nil)
	if !errors.Is(err, boom) {
		t.Errorf("untag failure must abort the deployment, got %v", err)
	}
	if fake.count("TagService") != 0 {
		t.Error("tag call must not run after a failed untag")
	}
}
