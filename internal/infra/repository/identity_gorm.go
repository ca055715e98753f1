package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// IdentityGormRepository reads the users table shared with the identity
// service.
type IdentityGormRepository struct {
	db *gorm.DB
}

var _ domain.IdentityProvider = (*IdentityGormRepository)(nil)

func NewIdentityGormRepository(db *gorm.DB) *IdentityGormRepository {
	return &IdentityGormRepository{db: db}
}

func (r *IdentityGormRepository) FindUser(
	ctx context.Context,
	id uint,
	role models.Role,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, string(role)).
		First(&u).Error; err != nil {
		return nil, notFound(err, string(role)+"_not_found", "No "+string(role)+" with this id.")
	}
	return &u, nil
}

// ConsultationGormReader reads consultations written by the consultation
// service.
type ConsultationGormReader struct {
	db *gorm.DB
}

var _ domain.ConsultationReader = (*ConsultationGormReader)(nil)

func NewConsultationGormReader(db *gorm.DB) *ConsultationGormReader {
	return &ConsultationGormReader{db: db}
}

func (r *ConsultationGormReader) HasConsultation(
	ctx context.Context,
	appointmentID uint,
	animalID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Consultation{}).
		Where("appointment_id = ? AND animal_id = ?", appointmentID, animalID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check consultation: %w", err)
	}
	return count > 0, nil
}

func (r *ConsultationGormReader) DistinctConsultedAnimalIDs(
	ctx context.Context,
	appointmentID uint,
) ([]uint, error) {

	ids := []uint{}
	if err := r.db.WithContext(ctx).
		Model(&models.Consultation{}).
		Where("appointment_id = ?", appointmentID).
		Distinct("animal_id").
		Pluck("animal_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("consulted animals: %w", err)
	}
	return ids, nil
}
