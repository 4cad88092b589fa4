package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/pkg/filesystem"
	"github.com/doeshing/shlaunch/internal/ports"
)

const probeKey = "doctorProbe"

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.KeyValueStore
	Resolver       ports.DirectoryResolver
	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded format %s", cfg.ConfigFormatVersion)))

	checks = append(checks, s.shellCheck(cfg.Preferences.Shell()))
	checks = append(checks, profileCheck(cfg.Preferences))
	checks = append(checks, s.storeCheck(ctx))
	checks = append(checks, s.resolverCheck(ctx))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) shellCheck(shell string) domain.HealthCheck {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(shell)
	if err != nil {
		return fail("Shell", fmt.Sprintf("%s not executable: %v", shell, err))
	}
	return ok("Shell", fmt.Sprintf("%s (%s)", path, domain.ShellFamily(shell)))
}

func profileCheck(prefs domain.Preferences) domain.HealthCheck {
	profile := prefs.Profile()
	if profile == "" {
		return ok("Shell profile", fmt.Sprintf("default init for %s", domain.ShellFamily(prefs.Shell())))
	}
	path := filesystem.ExpandPath(profile)
	f, err := os.Open(path)
	if err != nil {
		return fail("Shell profile", fmt.Sprintf("%s unreadable: %v", path, err))
	}
	_ = f.Close()
	return ok("Shell profile", path)
}

func (s *Service) storeCheck(ctx context.Context) domain.HealthCheck {
	if s.Store == nil {
		return warn("History store", "not initialized; history is kept in memory only")
	}
	payload := []byte(time.Now().UTC().Format(time.RFC3339))
	if err := s.Store.Put(ctx, probeKey, payload); err != nil {
		return fail("History store", fmt.Sprintf("%s not writable: %v", s.Store.Location(), err))
	}
	if err := s.Store.Delete(ctx, probeKey); err != nil {
		return warn("History store", fmt.Sprintf("probe cleanup failed: %v", err))
	}
	return ok("History store", s.Store.Location())
}

func (s *Service) resolverCheck(ctx context.Context) domain.HealthCheck {
	if s.Resolver == nil {
		return ok("Directory inference", "disabled")
	}
	dir, err := s.Resolver.Resolve(ctx)
	if err != nil {
		return warn("Directory inference", fmt.Sprintf("unavailable (%v); commands run in the current directory", err))
	}
	return ok("Directory inference", dir)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
