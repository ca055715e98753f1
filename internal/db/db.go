package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/vet-scheduler/internal/config"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{PrepareStmt: true}
	if !cfg.IsDev() {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Migrate creates or updates the engine's tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Animal{},
		&models.AvailabilityWindow{},
		&models.Appointment{},
		&models.AppointmentAnimal{},
		&models.Consultation{},
		&models.Payment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Serves ListAppointmentsForDay under the booking lock.
	return db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_appointments_vet_date_active
        ON appointments (veterinarian_id, "date")
        WHERE status <> 'canceled'
    `).Error
}
