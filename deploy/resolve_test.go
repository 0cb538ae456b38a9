package deploy

import (
	"context"
	"errors"
	"testing"
)

func TestResolveBlankNameShortCircuits(t *testing.T) {
	fake := &fakePlatform{}
	d := testDeployer(fake)

	res, err := d.resolve(context.Background(), "default", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if res.Exists {
		t.Error("blank name must classify as create")
	}
	if len(fake.calls) != 0 {
		t.Errorf("blank name must make no remote calls, got %v", fake.calls)
	}
}

func TestResolveNotFound(t *testing.T) {
	fake := &fakePlatform{
		describeService: func(cluster, name string) (*RemoteService, error) { return nil, nil },
	}
	d := testDeployer(fake)

	res, err := d.resolve(context.Background(), "default", "web")
	if err != nil {
		t.Fatal(err)
	}
	if res.Exists {
		t.Error("absent service must classify as create")
	}
}

func TestResolveInactiveCountsAsAbsent(t *testing.T) {
	fake := &fakePlatform{
		describeService: func(cluster, name string) (*RemoteService, error) {
			return &RemoteService{ARN: "arn:svc", Status: ServiceStatusInactive}, nil
		},
	}
	d := testDeployer(fake)

	res, err := d.resolve(context.Background(), "default", "web")
	if err != nil {
		t.Fatal(err)
	}
	if res.Exists {
		t.Error("INACTIVE service must be eligible for re-creation")
	}
}

func TestResolveActiveReturnsTags(t *testing.T) {
	fake := &fakePlatform{
		describeService: func(cluster, name string) (*RemoteService, error) {
			return &RemoteService{
				ARN:    "arn:svc",
				Status: ServiceStatusActive,
				Tags:   []Tag{{Key: "team", Value: "infra"}},
			}, nil
		},
	}
	d := testDeployer(fake)

	res, err := d.resolve(context.Background(), "default", "web")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Exists {
		t.Fatal("existing service must classify as update")
	}
	if len(res.Tags) != 1 || res.Tags[0].Key != "team" {
		t.Errorf("tags: %v", res.Tags)
	}
}

func TestResolveErrorPropagates(t *testing.T) {
	boom := errors.New("throttled")
	fake := &fakePlatform{
		describeService: func(cluster, name string) (*RemoteService, error) { return nil, boom },
	}
	d := testDeployer(fake)

	_, err := d.resolve(context.Background(), "default", "web")
	if !errors.Is(err, boom) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	fake := &fakePlatform{
		describeService: func(cluster, name string) (*RemoteService, error) {
			return &RemoteService{ARN: "arn:svc", Status: ServiceStatusActive}, nil
		},
	}
	d := testDeployer(fake)

	first, err := d.resolve(context.Background(), "default", "web")
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.resolve(context.Background(), "default", "web")
	if err != nil {
		t.Fatal(err)
	}
	if first.Exists != second.Exists {
		t.Error("back-to-back resolution must agree")
	}
}
