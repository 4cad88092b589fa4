package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/shlaunch/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubStore struct {
	putErr error
	data   map[string][]byte
}

func (s *stubStore) Get(_ context.Context, key string) ([]byte, error) { return s.data[key], nil }
func (s *stubStore) Put(_ context.Context, key string, value []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.data == nil {
		s.data = map[string][]byte{}
	}
	s.data[key] = value
	return nil
}
func (s *stubStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}
func (s *stubStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	next, err := fn(s.data[key])
	if err != nil {
		return err
	}
	return s.Put(ctx, key, next)
}
func (s *stubStore) Location() string { return "memory" }

type stubResolver struct {
	dir string
	err error
}

func (r stubResolver) Resolve(context.Context) (string, error) { return r.dir, r.err }

func foundShell(name string) (string, error) { return name, nil }

func statusOf(t *testing.T, report domain.HealthReport, name string) domain.HealthCheck {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %q missing from %+v", name, report.Checks)
	return domain.HealthCheck{}
}

func TestRunHealthy(t *testing.T) {
	store := &stubStore{}
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{ConfigFormatVersion: "1", Preferences: domain.Preferences{DefaultShell: "/bin/zsh"}}},
		Store:          store,
		Resolver:       stubResolver{dir: "/tmp"},
		LookPath:       foundShell,
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("unexpected failures: %+v", report.Checks)
	}
	if got := statusOf(t, report, "Directory inference"); got.Details != "/tmp" {
		t.Fatalf("resolver details = %q", got.Details)
	}
	if _, ok := store.data[probeKey]; ok {
		t.Fatal("probe key left behind")
	}
}

func TestRunReportsProblems(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{Preferences: domain.Preferences{
			DefaultShell: "/nope/zsh",
			ShellProfile: filepath.Join(t.TempDir(), "missing.sh"),
		}}},
		Store:    &stubStore{putErr: errors.New("read-only")},
		Resolver: stubResolver{err: errors.New("unsupported")},
		LookPath: func(string) (string, error) { return "", os.ErrNotExist },
	}

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	for name, want := range map[string]domain.HealthStatus{
		"Shell":               domain.HealthError,
		"Shell profile":       domain.HealthError,
		"History store":       domain.HealthError,
		"Directory inference": domain.HealthWarn,
	} {
		if got := statusOf(t, report, name).Status; got != want {
			t.Errorf("%s status = %s, want %s", name, got, want)
		}
	}
}

func TestRunStopsOnConfigError(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("boom")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("unexpected report: %+v", report.Checks)
	}
}

func TestRunWithoutStoreOrResolver(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: domain.Config{}},
		LookPath:       foundShell,
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if got := statusOf(t, report, "History store").Status; got != domain.HealthWarn {
		t.Fatalf("store status = %s", got)
	}
	if got := statusOf(t, report, "Directory inference").Details; got != "disabled" {
		t.Fatalf("resolver details = %q", got)
	}
}
