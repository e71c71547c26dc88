package registrations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for registration data operations
type Repository interface {
	Create(ctx context.Context, registration *Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	GetByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetChild(ctx context.Context, registrationID, childID uuid.UUID) (*Child, error)
	DeleteChild(ctx context.Context, childID uuid.UUID) error
	CountChildren(ctx context.Context, registrationID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

// Create inserts the registration and its children in one transaction so a
// partial family never counts toward capacity.
func (r *repository) Create(ctx context.Context, registration *Registration) error {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	for i := range registration.Children {
		if registration.Children[i].ID == uuid.Nil {
			registration.Children[i].ID = uuid.New()
		}
		registration.Children[i].RegistrationID = registration.ID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(registration).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	var registration Registration
	err := r.db.WithContext(ctx).
		Preload("Children").
		Where("id = ?", id).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *repository) GetByEvent(ctx context.Context, eventID uuid.UUID) ([]Registration, error) {
	var registrations []Registration
	err := r.db.WithContext(ctx).
		Preload("Children").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return registrations, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registration_id = ?", id).Delete(&Child{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Registration{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return nil
}

func (r *repository) GetChild(ctx context.Context, registrationID, childID uuid.UUID) (*Child, error) {
	var child Child
	err := r.db.WithContext(ctx).
		Where("id = ? AND registration_id = ?", childID, registrationID).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *repository) DeleteChild(ctx context.Context, childID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("id = ?", childID).Delete(&Child{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}

func (r *repository) CountChildren(ctx context.Context, registrationID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Child{}).
		Where("registration_id = ?", registrationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return int(count), nil
}
