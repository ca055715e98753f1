package routes

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	"github.com/BruksfildServices01/vet-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/vet-scheduler/internal/db"
	apdomain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	avdomain "github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	infraRepo "github.com/BruksfildServices01/vet-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
)

// Deps holds the singletons the routes are built from.
type Deps struct {
	Config *config.Config

	// DB is nil when running on the memory store.
	DB *gorm.DB

	Availability  avdomain.Repository
	Appointments  apdomain.Repository
	Identity      apdomain.IdentityProvider
	Consultations apdomain.ConsultationReader
	Deduper       ucAppointment.Deduper

	Audit    audit.Recorder
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func newRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.New("vet_scheduler", reg)
}

// NewMemoryDeps wires everything on a single in-memory store.
func NewMemoryDeps(cfg *config.Config, store *memory.Store) *Deps {
	reg, m := newRegistry()
	return &Deps{
		Config:        cfg,
		Availability:  store,
		Appointments:  store,
		Identity:      store,
		Consultations: store,
		Deduper:       payments.NewMemoryDeduper(cfg.PaymentEventTTL),
		Audit:         audit.Nop{},
		Metrics:       m,
		Registry:      reg,
	}
}

// Build selects the store and dedupe backend from cfg.
func Build(ctx context.Context, cfg *config.Config) (*Deps, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return NewMemoryDeps(cfg, memory.New()), nil
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return nil, err
	}

	reg, m := newRegistry()
	dispatcher := audit.NewDispatcher(audit.New(db))

	d := &Deps{
		Config:        cfg,
		DB:            db,
		Availability:  infraRepo.NewAvailabilityGormRepository(db),
		Appointments:  infraRepo.NewAppointmentGormRepository(db),
		Identity:      infraRepo.NewIdentityGormRepository(db),
		Consultations: infraRepo.NewConsultationGormReader(db),
		Audit:         dispatcher,
		Metrics:       m,
		Registry:      reg,
	}
	d.closers = append(d.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	d.closers = append(d.closers, dispatcher.Close)

	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set; payment events deduplicated per process")
		d.Deduper = payments.NewMemoryDeduper(cfg.PaymentEventTTL)
		return d, nil
	}

	client, err := payments.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	d.Deduper = payments.NewRedisDeduper(client, cfg.PaymentEventTTL)
	d.closers = append(d.closers, func() { _ = client.Close() })

	return d, nil
}
