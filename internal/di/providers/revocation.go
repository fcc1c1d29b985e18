package providers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/samber/do/v2"

	"github.com/catalogd/catalog-server/internal/config"
	"github.com/catalogd/catalog-server/internal/logger"
	"github.com/catalogd/catalog-server/internal/revocation"
)

// RevocationSetHandle wraps the token blocklist with Shutdownable.
type RevocationSetHandle struct {
	revocation.Set
	Backend string
}

// Shutdown implements do.Shutdownable.
func (h *RevocationSetHandle) Shutdown() error {
	return h.Close()
}

// ProvideRevocationSet provides the token blocklist for the configured backend.
func ProvideRevocationSet(i do.Injector) (*RevocationSetHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		set revocation.Set
		err error
	)

	switch cfg.Revocation.Backend {
	case config.RevocationBadger:
		path := filepath.Join(cfg.Storage.DataPath, "revocations")
		set, err = revocation.OpenBadgerSet(path)
		if err != nil {
			return nil, err
		}
		log.Info("Revocation set opened", "backend", cfg.Revocation.Backend, "path", path)

	case config.RevocationRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		set, err = revocation.DialRedisSet(ctx, cfg.Revocation.RedisAddr, cfg.Revocation.RedisPassword, cfg.Revocation.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("Revocation set connected", "backend", cfg.Revocation.Backend, "addr", cfg.Revocation.RedisAddr)

	case config.RevocationMemory:
		set = revocation.NewMemorySet()
		log.Info("Revocation set ready", "backend", cfg.Revocation.Backend)

	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.Revocation.Backend)
	}

	return &RevocationSetHandle{Set: set, Backend: cfg.Revocation.Backend}, nil
}

// RevocationSweepJob periodically drops expired revocations.
type RevocationSweepJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *RevocationSweepJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideRevocationSweepJob provides the periodic revocation sweep.
func ProvideRevocationSweepJob(i do.Injector) (*RevocationSweepJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	setHandle := do.MustInvoke[*RevocationSetHandle](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("revocation")

	ctx, cancel := context.WithCancel(context.Background())
	job := &RevocationSweepJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)

		ticker := time.NewTicker(cfg.Revocation.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if count, err := setHandle.Sweep(ctx); err != nil {
					log.Warn("Revocation sweep failed", "error", err)
				} else if count > 0 {
					log.Info("Revocation sweep completed", "removed", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Revocation sweep job started", "interval", cfg.Revocation.SweepInterval)

	return job, nil
}
