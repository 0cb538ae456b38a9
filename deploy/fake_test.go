package deploy

import (
	"context"
	"fmt"
	"time"
)

// fakePlatform scripts the remote side. Unset funcs fail the call so tests
// notice unexpected traffic; calls records the operation order.
type fakePlatform struct {
	describeService    func(cluster, name string) (*RemoteService, error)
	describeExpress    func(serviceARN string) (*ExpressService, error)
	listDeployments    func(serviceARN string, createdAfter time.Time) ([]string, error)
	describeDeployment func(deploymentARN string) (*Deployment, error)
	createService      func(spec *ServiceSpec) (*ExpressService, error)
	updateService      func(serviceARN string, spec *ServiceSpec) (*ExpressService, error)
	tagService         func(serviceARN string, tags []Tag) error
	untagService       func(serviceARN string, keys []string) error

	calls []string
}

func (f *fakePlatform) record(op string) {
	f.calls = append(f.calls, op)
}

func (f *fakePlatform) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakePlatform) DescribeService(_ context.Context, cluster, name string) (*RemoteService, error) {
	f.record("DescribeService")
	if f.describeService == nil {
		return nil, fmt.Errorf("unexpected DescribeService call")
	}
	return f.describeService(cluster, name)
}

func (f *fakePlatform) DescribeExpressService(_ context.Context, serviceARN string) (*ExpressService, error) {
	f.record("DescribeExpressService")
	if f.describeExpress == nil {
		return nil, fmt.Errorf("unexpected DescribeExpressService call")
	}
	return f.describeExpress(serviceARN)
}

func (f *fakePlatform) ListDeployments(_ context.Context, serviceARN string, createdAfter time.Time) ([]string, error) {
	f.record("ListDeployments")
	if f.listDeployments == nil {
		return nil, fmt.Errorf("unexpected ListDeployments call")
	}
	return f.listDeployments(serviceARN, createdAfter)
}

func (f *fakePlatform) DescribeDeployment(_ context.Context, deploymentARN string) (*Deployment, error) {
	f.record("DescribeDeployment")
	if f.describeDeployment == nil {
		return nil, fmt.Errorf("unexpected DescribeDeployment call")
	}
	return f.describeDeployment(deploymentARN)
}

func (f *fakePlatform) CreateService(_ context.Context, spec *ServiceSpec) (*ExpressService, error) {
	f.record("CreateService")
	if f.createService == nil {
		return nil, fmt.Errorf("unexpected CreateService call")
	}
	return f.createService(spec)
}

func (f *fakePlatform) UpdateService(_ context.Context, serviceARN string, spec *ServiceSpec) (*ExpressService, error) {
	f.record("UpdateService")
	if f.updateService == nil {
		return nil, fmt.Errorf("unexpected UpdateService call")
	}
	return f.updateService(serviceARN, spec)
}

func (f *fakePlatform) TagService(_ context.Context, serviceARN string, tags []Tag) error {
	f.record("TagService")
	if f.tagService == nil {
		return fmt.Errorf("unexpected TagService call")
	}
	return f.tagService(serviceARN, tags)
}

func (f *fakePlatform) UntagService(_ context.Context, serviceARN string, keys []string) error {
	f.record("UntagService")
	if f.untagService == nil {
		return fmt.Errorf("unexpected UntagService call")
	}
	return f.untagService(serviceARN, keys)
}

// fakeClock advances time only when Sleep is called.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.sleeps++
}

// fakeOutputs collects outputs in order.
type fakeOutputs struct {
	values map[string]string
	order  []string
}

func newFakeOutputs() *fakeOutputs {
	return &fakeOutputs{values: make(map[string]string)}
}

func (o *fakeOutputs) Set(name, value string) error {
	o.values[name] = value
	o.order = append(o.order, name)
	return nil
}
