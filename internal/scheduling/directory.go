package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Directory manages the hospital, doctor and user records that appointments
// reference. Doctors are soft-deleted: deactivation hides them from listings
// and booking but preserves their appointment history.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) CreateHospital(ctx context.Context, name, address string, contact *string) (*Hospital, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: hospital name is required", ErrValidation)
	}
	if address == "" {
		return nil, fmt.Errorf("%w: hospital address is required", ErrValidation)
	}

	return d.repo.CreateHospital(ctx, &Hospital{
		Name:    name,
		Address: address,
		Contact: contact,
	})
}

func (d *Directory) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return d.repo.GetHospitalByID(ctx, id)
}

func (d *Directory) ListHospitals(ctx context.Context) ([]Hospital, error) {
	return d.repo.ListHospitals(ctx)
}

// UpdateHospital changes a hospital's address and contact. The name is
// identity and cannot change.
func (d *Directory) UpdateHospital(ctx context.Context, id uuid.UUID, address string, contact *string) (*Hospital, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: hospital address is required", ErrValidation)
	}
	return d.repo.UpdateHospital(ctx, id, address, contact)
}

func (d *Directory) CreateDoctor(ctx context.Context, name, specialization string, hospitalID uuid.UUID, slotTemplates []string) (*Doctor, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: doctor name is required", ErrValidation)
	}
	if specialization == "" {
		return nil, fmt.Errorf("%w: specialization is required", ErrValidation)
	}
	if hospitalID == uuid.Nil {
		return nil, fmt.Errorf("%w: hospital id is required", ErrValidation)
	}
	if err := validateTemplates(slotTemplates); err != nil {
		return nil, err
	}

	if _, err := d.repo.GetHospitalByID(ctx, hospitalID); err != nil {
		if errors.Is(err, ErrHospitalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load hospital: %w", err)
	}

	return d.repo.CreateDoctor(ctx, &Doctor{
		Name:           name,
		Specialization: specialization,
		HospitalID:     hospitalID,
		SlotTemplates:  slotTemplates,
	})
}

func (d *Directory) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return d.repo.GetDoctorByID(ctx, id)
}

func (d *Directory) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return d.repo.ListActiveDoctors(ctx)
}

func (d *Directory) ListDoctorsByHospital(ctx context.Context, hospitalID uuid.UUID) ([]Doctor, error) {
	if _, err := d.repo.GetHospitalByID(ctx, hospitalID); err != nil {
		return nil, err
	}
	return d.repo.ListDoctorsByHospital(ctx, hospitalID)
}

func (d *Directory) UpdateDoctor(ctx context.Context, id uuid.UUID, name, specialization string, slotTemplates []string) (*Doctor, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: doctor name is required", ErrValidation)
	}
	if specialization == "" {
		return nil, fmt.Errorf("%w: specialization is required", ErrValidation)
	}
	if err := validateTemplates(slotTemplates); err != nil {
		return nil, err
	}

	return d.repo.UpdateDoctor(ctx, &Doctor{
		ID:             id,
		Name:           name,
		Specialization: specialization,
		SlotTemplates:  slotTemplates,
	})
}

// DeactivateDoctor soft-deletes a doctor.
func (d *Directory) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	return d.repo.DeactivateDoctor(ctx, id)
}

func (d *Directory) CreateUser(ctx context.Context, name string, email *string, role UserRole) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: user name is required", ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be patient, doctor or pharmacy", ErrValidation)
	}

	return d.repo.CreateUser(ctx, &User{
		Name:  name,
		Email: email,
		Role:  role,
	})
}

func (d *Directory) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return d.repo.GetUserByID(ctx, id)
}

func validateTemplates(templates []string) error {
	for _, tpl := range templates {
		if _, err := time.Parse("15:04", tpl); err != nil {
			return fmt.Errorf("%w: slot template %q must be HH:MM", ErrValidation, tpl)
		}
	}
	return nil
}
