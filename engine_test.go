package credgate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// mockProvider is an in-memory IdentityProvider. Registrations default to
// unverified, mirroring an identity service that gates verification on a
// separate email round-trip.
type mockProvider struct {
	byEmail map[string]*Identity
	byID    map[string]*Identity

	registerCalls int
	failWith      error
	next          int
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		byEmail: make(map[string]*Identity),
		byID:    make(map[string]*Identity),
	}
}

func (p *mockProvider) RegisterIdentity(_ context.Context, nickname, email string) (Identity, error) {
	p.registerCalls++
	if p.failWith != nil {
		return Identity{}, p.failWith
	}
	if _, exists := p.byEmail[email]; exists {
		return Identity{}, errors.New("email taken")
	}

	p.next++
	id := &Identity{
		OwnerID:  fmt.Sprintf("owner-%d", p.next),
		Nickname: nickname,
		Email:    email,
	}
	p.byEmail[email] = id
	p.byID[id.OwnerID] = id
	return *id, nil
}

func (p *mockProvider) IdentityByEmail(_ context.Context, email string) (Identity, error) {
	if p.failWith != nil {
		return Identity{}, p.failWith
	}
	id, ok := p.byEmail[email]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return *id, nil
}

func (p *mockProvider) IdentityByID(_ context.Context, ownerID string) (Identity, error) {
	if p.failWith != nil {
		return Identity{}, p.failWith
	}
	id, ok := p.byID[ownerID]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return *id, nil
}

func (p *mockProvider) verify(t *testing.T, email string) {
	t.Helper()
	id, ok := p.byEmail[email]
	if !ok {
		t.Fatalf("no identity for %s", email)
	}
	id.Verified = true
}

func newTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *mockProvider, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	provider := newMockProvider()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, provider, mr
}

func newAuditedEngine(t *testing.T, cfg Config, sink AuditSink) (*Engine, *mockProvider) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	provider := newMockProvider()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityProvider(provider).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, provider
}

// registerVerified provisions an owner with a verified identity and an
// active credential, the state most tests start from.
func registerVerified(t *testing.T, engine *Engine, provider *mockProvider, email, pass string) *RegisterResult {
	t.Helper()

	res, err := engine.Register(context.Background(), RegisterRequest{
		Nickname:        "tester",
		Email:           email,
		Password:        pass,
		ConfirmPassword: pass,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	provider.verify(t, email)
	return res
}

func TestMetricsSnapshotCountsOperations(t *testing.T) {
	engine, provider, _ := newTestEngine(t, newTestConfig())

	registerVerified(t, engine, provider, "ada@example.com", "correct horse")
	if _, err := engine.Login(context.Background(), "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := engine.Login(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}

	snap := engine.MetricsSnapshot()
	if got := snap.Counters[MetricRegisterSuccess]; got != 1 {
		t.Errorf("register success counter = %d, want 1", got)
	}
	if got := snap.Counters[MetricLoginSuccess]; got != 1 {
		t.Errorf("login success counter = %d, want 1", got)
	}
	if got := snap.Counters[MetricLoginFailure]; got != 1 {
		t.Errorf("login failure counter = %d, want 1", got)
	}
	if got := snap.Counters[MetricTokenIssued]; got != 1 {
		t.Errorf("token issued counter = %d, want 1", got)
	}
}

func TestEngineNotReady(t *testing.T) {
	var engine *Engine
	if _, err := engine.Register(context.Background(), RegisterRequest{}); !errors.Is(err, ErrEngineNotReady) {
		t.Errorf("nil engine Register: got %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Login(context.Background(), "a@b.c", "x"); !errors.Is(err, ErrEngineNotReady) {
		t.Errorf("nil engine Login: got %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Authenticate(context.Background(), "token"); !errors.Is(err, ErrEngineNotReady) {
		t.Errorf("nil engine Authenticate: got %v, want ErrEngineNotReady", err)
	}
}

func TestBuilderValidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	if _, err := New().WithIdentityProvider(newMockProvider()).Build(); err == nil {
		t.Error("expected error without redis client")
	}
	if _, err := New().WithRedis(client).Build(); err == nil {
		t.Error("expected error without identity provider")
	}

	// Default config has no secret, so a fully wired builder still fails
	// validation until one is set.
	if _, err := New().WithRedis(client).WithIdentityProvider(newMockProvider()).Build(); err == nil {
		t.Error("expected validation error for missing token secret")
	}

	b := New().WithConfig(newTestConfig()).WithRedis(client).WithIdentityProvider(newMockProvider())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Error("expected error reusing a builder")
	}
}
