package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	quirev1alpha1 "github.com/bayleafwalker/quire/api/v1alpha1"
)

type greeter interface {
	Greet() string
}

type staticGreeter struct {
	name   string
	closed *[]string
}

func (g *staticGreeter) Greet() string { return "hello " + g.name }

func (g *staticGreeter) Close() error {
	if g.closed != nil {
		*g.closed = append(*g.closed, g.name)
	}
	return nil
}

var (
	greeterKey = NewKey[greeter]("test.greeter")
	nameKey    = NewKey[string]("test.name")
	countKey   = NewKey[int]("test.count")
)

func mustBuild(t *testing.T, platform quirev1alpha1.Platform, modules ...*Module) *Container {
	t.Helper()
	c, err := Build(context.Background(), platform, modules)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return c
}

func TestBuild_DoesNotConstruct(t *testing.T) {
	var calls atomic.Int32
	m := NewModule("data")
	Provide(m, nameKey, func(context.Context, Deps) (string, error) {
		calls.Add(1)
		return "quire", nil
	})

	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no construction during Build, got %d", got)
	}
	if len(c.Constructed()) != 0 {
		t.Fatalf("expected nothing constructed, got %v", c.Constructed())
	}
}

func TestResolve_SingletonIsSharedFactoryIsFresh(t *testing.T) {
	var built atomic.Int32
	m := NewModule("data")
	Provide(m, greeterKey, func(context.Context, Deps) (greeter, error) {
		built.Add(1)
		return &staticGreeter{name: "single"}, nil
	})
	Provide(m, countKey, func(context.Context, Deps) (int, error) {
		return int(built.Add(1)), nil
	}, AsFactory())

	c := mustBuild(t, quirev1alpha1.PlatformAndroid, m)
	ctx := context.Background()

	a := MustResolve(ctx, c, greeterKey)
	b := MustResolve(ctx, c, greeterKey)
	if a != b {
		t.Fatalf("expected singleton to resolve to the same instance")
	}

	first := MustResolve(ctx, c, countKey)
	second := MustResolve(ctx, c, countKey)
	if first == second {
		t.Fatalf("expected factory to construct a new instance per resolution, got %d twice", first)
	}
	if got := c.Constructed(); len(got) != 1 || got[0] != "test.greeter" {
		t.Fatalf("expected only the singleton to be tracked, got %v", got)
	}
}

func TestResolve_ConstructsOnlyTransitiveClosure(t *testing.T) {
	m := NewModule("data")
	Value(m, nameKey, "quire")
	Provide(m, greeterKey, func(ctx context.Context, d Deps) (greeter, error) {
		name, err := Resolve(ctx, d, nameKey)
		if err != nil {
			return nil, err
		}
		return &staticGreeter{name: name}, nil
	}, Needs(nameKey))
	Provide(m, countKey, func(context.Context, Deps) (int, error) {
		t.Fatalf("unrelated provider must not be constructed")
		return 0, nil
	})

	c := mustBuild(t, quirev1alpha1.PlatformIOS, m)
	g := MustResolve(context.Background(), c, greeterKey)
	if g.Greet() != "hello quire" {
		t.Fatalf("unexpected greeting %q", g.Greet())
	}
	got := c.Constructed()
	want := []quirev1alpha1.CapabilityID{"test.name", "test.greeter"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected construction order %v, got %v", want, got)
	}
}

func TestResolve_UndeclaredDependencyFails(t *testing.T) {
	m := NewModule("data")
	Value(m, nameKey, "quire")
	Provide(m, greeterKey, func(ctx context.Context, d Deps) (greeter, error) {
		name, err := Resolve(ctx, d, nameKey)
		if err != nil {
			return nil, err
		}
		return &staticGreeter{name: name}, nil
	})

	c := mustBuild(t, quirev1alpha1.PlatformWeb, m)
	_, err := Resolve(context.Background(), c, greeterKey)
	if !errors.Is(err, ErrUndeclaredDependency) {
		t.Fatalf("expected ErrUndeclaredDependency, got %v", err)
	}
}

func TestResolve_FailedConstructionIsNotCached(t *testing.T) {
	var attempts atomic.Int32
	m := NewModule("data")
	Provide(m, nameKey, func(context.Context, Deps) (string, error) {
		if attempts.Add(1) == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)
	ctx := context.Background()
	if _, err := Resolve(ctx, c, nameKey); err == nil || !strings.Contains(err.Error(), "transient") {
		t.Fatalf("expected first resolution to fail with transient error, got %v", err)
	}
	v, err := Resolve(ctx, c, nameKey)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to succeed, got %q, %v", v, err)
	}
}

func TestResolve_ConcurrentCallersShareOneConstruction(t *testing.T) {
	var built atomic.Int32
	release := make(chan struct{})
	m := NewModule("data")
	Provide(m, greeterKey, func(context.Context, Deps) (greeter, error) {
		built.Add(1)
		<-release
		return &staticGreeter{name: "shared"}, nil
	})

	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)

	const callers = 16
	results := make([]greeter, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustResolve(context.Background(), c, greeterKey)
		}(i)
	}
	close(release)
	wg.Wait()

	if got := built.Load(); got != 1 {
		t.Fatalf("expected exactly one construction, got %d", got)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("caller %d received a different instance", i)
		}
	}
}

func TestResolve_MissingAndMismatchedKeys(t *testing.T) {
	m := NewModule("data")
	Value(m, nameKey, "quire")
	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)
	ctx := context.Background()

	if _, err := Resolve(ctx, c, countKey); !errors.Is(err, ErrMissingRegistration) {
		t.Fatalf("expected ErrMissingRegistration, got %v", err)
	}

	wrongType := NewKey[int]("test.name")
	if _, err := Resolve(ctx, c, wrongType); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}

	if _, ok, err := ResolveOptional(ctx, c, countKey); ok || err != nil {
		t.Fatalf("expected absent optional capability, got ok=%v err=%v", ok, err)
	}
	if v, ok, err := ResolveOptional(ctx, c, nameKey); !ok || err != nil || v != "quire" {
		t.Fatalf("expected present optional capability, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestBuild_MissingRequirementNamesCapabilityAndConsumer(t *testing.T) {
	feature := NewModule("feature").Require(greeterKey, "")
	_, err := Build(context.Background(), quirev1alpha1.PlatformIOS, []*Module{feature})
	if !errors.Is(err, ErrMissingRegistration) {
		t.Fatalf("expected ErrMissingRegistration, got %v", err)
	}
	if !strings.Contains(err.Error(), `"test.greeter"`) || !strings.Contains(err.Error(), `"feature"`) {
		t.Fatalf("error should name capability and consumer: %v", err)
	}
}

func TestBuild_RequirementTypeMustMatchProvider(t *testing.T) {
	type left struct{}
	type right struct{}

	m := NewModule("feature")
	Value(m, NewKey[left]("test.shape"), left{})
	m.Require(NewKey[right]("test.shape"), "")

	_, err := Build(context.Background(), quirev1alpha1.PlatformDesktop, []*Module{m})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch from Build, got %v", err)
	}
	if !errors.Is(err, ErrMissingRegistration) {
		t.Fatalf("expected the mismatch to count as a missing registration, got %v", err)
	}
	if !strings.Contains(err.Error(), "test.shape") {
		t.Fatalf("expected the capability in the error, got %v", err)
	}
}

func TestBuild_FactoryDependencyTypeMustMatchProvider(t *testing.T) {
	wrongName := NewKey[int]("test.name")
	m := NewModule("data")
	Value(m, nameKey, "quire")
	Provide(m, greeterKey, func(context.Context, Deps) (greeter, error) {
		return &staticGreeter{}, nil
	}, NeedsOptional(wrongName))

	_, err := Build(context.Background(), quirev1alpha1.PlatformDesktop, []*Module{m})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch from Build, got %v", err)
	}
}

func TestBuild_UntypedRequirementSkipsTypeCheck(t *testing.T) {
	m := NewModule("feature")
	Value(m, nameKey, "quire")
	m.Require(ID("test.name"), "")
	mustBuild(t, quirev1alpha1.PlatformDesktop, m)
}

func TestBuild_ConflictingRegistrationsFail(t *testing.T) {
	a := NewModule("a")
	Value(a, nameKey, "a")
	b := NewModule("b")
	Value(b, nameKey, "b")

	_, err := Build(context.Background(), quirev1alpha1.PlatformWeb, []*Module{a, b})
	if !errors.Is(err, ErrConflictingRegistration) {
		t.Fatalf("expected ErrConflictingRegistration, got %v", err)
	}
}

func TestBuild_PlatformModulesOnlyParticipateOnTheirPlatform(t *testing.T) {
	android := NewModule("android").ForPlatform(quirev1alpha1.PlatformAndroid)
	Value(android, nameKey, "android")
	web := NewModule("web").ForPlatform(quirev1alpha1.PlatformWeb)
	Value(web, nameKey, "web")
	root := NewModule("root").Include(android, web).Require(nameKey, "")

	for _, p := range []quirev1alpha1.Platform{quirev1alpha1.PlatformAndroid, quirev1alpha1.PlatformWeb} {
		c := mustBuild(t, p, root)
		if got := MustResolve(context.Background(), c, nameKey); got != string(p) {
			t.Fatalf("expected %s variant, got %q", p, got)
		}
	}
	if _, err := Build(context.Background(), quirev1alpha1.PlatformDesktop, []*Module{root}); !errors.Is(err, ErrMissingRegistration) {
		t.Fatalf("expected desktop build to fail, got %v", err)
	}
}

func TestBuild_DeclaredCycleFails(t *testing.T) {
	m := NewModule("data")
	Provide(m, nameKey, func(context.Context, Deps) (string, error) { return "", nil }, Needs(countKey))
	Provide(m, countKey, func(context.Context, Deps) (int, error) { return 0, nil }, Needs(nameKey))

	_, err := Build(context.Background(), quirev1alpha1.PlatformDesktop, []*Module{m})
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
	if !strings.Contains(err.Error(), "test.count -> test.name -> test.count") {
		t.Fatalf("expected cycle path in error, got %v", err)
	}
}

func TestBuild_DuplicateModuleNames(t *testing.T) {
	_, err := Build(context.Background(), quirev1alpha1.PlatformDesktop, []*Module{NewModule("x"), NewModule("x")})
	if !errors.Is(err, ErrDuplicateModule) {
		t.Fatalf("expected ErrDuplicateModule, got %v", err)
	}

	shared := NewModule("shared")
	Value(shared, nameKey, "once")
	a := NewModule("a").Include(shared)
	b := NewModule("b").Include(shared)
	if _, err := Build(context.Background(), quirev1alpha1.PlatformDesktop, []*Module{a, b}); err != nil {
		t.Fatalf("including one module twice must not conflict: %v", err)
	}
}

func TestClose_ReverseConstructionOrder(t *testing.T) {
	var closed []string
	first := NewKey[*staticGreeter]("test.first")
	second := NewKey[*staticGreeter]("test.second")

	m := NewModule("data")
	Provide(m, first, func(context.Context, Deps) (*staticGreeter, error) {
		return &staticGreeter{name: "first", closed: &closed}, nil
	})
	Provide(m, second, func(ctx context.Context, d Deps) (*staticGreeter, error) {
		if _, err := Resolve(ctx, d, first); err != nil {
			return nil, err
		}
		return &staticGreeter{name: "second", closed: &closed}, nil
	}, Needs(first))

	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)
	ctx := context.Background()
	MustResolve(ctx, c, second)

	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if fmt.Sprint(closed) != "[second first]" {
		t.Fatalf("expected reverse close order, got %v", closed)
	}
	if _, err := Resolve(ctx, c, first); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestClose_ClosesSingletonStillUnderConstruction(t *testing.T) {
	var closed []string
	started := make(chan struct{})
	release := make(chan struct{})
	key := NewKey[*staticGreeter]("test.slow")

	m := NewModule("data")
	Provide(m, key, func(context.Context, Deps) (*staticGreeter, error) {
		close(started)
		<-release
		return &staticGreeter{name: "slow", closed: &closed}, nil
	})
	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)

	type result struct {
		v   *staticGreeter
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := Resolve(context.Background(), c, key)
		done <- result{v, err}
	}()

	<-started
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	close(release)
	r := <-done

	if !errors.Is(r.err, ErrClosed) || r.v != nil {
		t.Fatalf("expected ErrClosed and no value, got %v, %v", r.v, r.err)
	}
	if fmt.Sprint(closed) != "[slow]" {
		t.Fatalf("expected the late singleton to be closed, got %v", closed)
	}
	if got := c.Constructed(); len(got) != 0 {
		t.Fatalf("expected nothing recorded as constructed, got %v", got)
	}
}

type failingCloser struct{}

func (failingCloser) Close(context.Context) error { return errors.New("flush failed") }

func TestClose_AggregatesErrors(t *testing.T) {
	key := NewKey[failingCloser]("test.failing")
	m := NewModule("data")
	Value(m, key, failingCloser{})

	c := mustBuild(t, quirev1alpha1.PlatformDesktop, m)
	MustResolve(context.Background(), c, key)
	err := c.Close(context.Background())
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Fatalf("expected aggregated close error, got %v", err)
	}
}

func TestManifest_DescribesRegistrations(t *testing.T) {
	m := NewModule("android").ForPlatform(quirev1alpha1.PlatformAndroid)
	Provide(m, greeterKey, func(context.Context, Deps) (greeter, error) { return nil, nil },
		Version("2.1.0"), Variant("playstore"), AsFactory(), Needs(nameKey), NeedsOptional(countKey))

	mf := m.Manifest()
	if mf.Platform != quirev1alpha1.PlatformAndroid || len(mf.Provides) != 1 {
		t.Fatalf("unexpected manifest %+v", mf)
	}
	p := mf.Provides[0]
	if p.Version != "2.1.0" || p.Variant != "playstore" || p.Scope != quirev1alpha1.ScopeFactory {
		t.Fatalf("unexpected registration %+v", p)
	}
	if p.Type != "container.greeter" {
		t.Fatalf("unexpected type %q", p.Type)
	}
	if len(p.Requires) != 2 || p.Requires[1].DependencyMode != quirev1alpha1.DependencyModeOptional {
		t.Fatalf("unexpected requirements %+v", p.Requires)
	}
}
