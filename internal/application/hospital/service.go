package hospital

import (
	"context"
	"time"

	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/pkg/id"
)

type hospitalStore interface {
	Put(ctx context.Context, h *domain.Hospital) error
	Get(ctx context.Context, hospitalID string) (*domain.Hospital, error)
	Scan(ctx context.Context) ([]domain.Hospital, error)
	Update(ctx context.Context, hospitalID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, hospitalID string) error
}

type Service interface {
	Create(ctx context.Context, in *domain.HospitalInput) (*domain.Hospital, error)
	Get(ctx context.Context, hospitalID string) (*domain.Hospital, error)
	List(ctx context.Context) ([]domain.Hospital, error)
	Update(ctx context.Context, hospitalID string, in *domain.HospitalInput) (*domain.Hospital, error)
	Delete(ctx context.Context, hospitalID string) error
}

type service struct {
	hospitals hospitalStore
	now       func() time.Time
}

func NewService(hospitals hospitalStore) Service {
	return &service{hospitals: hospitals, now: time.Now}
}

func (s *service) Create(ctx context.Context, in *domain.HospitalInput) (*domain.Hospital, error) {
	now := s.now().UTC()
	h := &domain.Hospital{
		HospitalID: id.New(),
		Name:       in.Name,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		Pincode:    in.Pincode,
		Phone:      in.Phone,
		Email:      in.Email,
		License:    in.License,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.hospitals.Put(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *service) Get(ctx context.Context, hospitalID string) (*domain.Hospital, error) {
	return s.hospitals.Get(ctx, hospitalID)
}

func (s *service) List(ctx context.Context) ([]domain.Hospital, error) {
	hospitals, err := s.hospitals.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if hospitals == nil {
		hospitals = []domain.Hospital{}
	}
	return hospitals, nil
}

func (s *service) Update(ctx context.Context, hospitalID string, in *domain.HospitalInput) (*domain.Hospital, error) {
	if _, err := s.hospitals.Get(ctx, hospitalID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"name":    in.Name,
		"address": in.Address,
		"city":    in.City,
		"state":   in.State,
		"pincode": in.Pincode,
		"phone":   in.Phone,
		"email":   in.Email,
		"license": in.License,
	}
	if err := s.hospitals.Update(ctx, hospitalID, updates); err != nil {
		return nil, err
	}
	return s.hospitals.Get(ctx, hospitalID)
}

func (s *service) Delete(ctx context.Context, hospitalID string) error {
	if _, err := s.hospitals.Get(ctx, hospitalID); err != nil {
		return err
	}
	return s.hospitals.HardDelete(ctx, hospitalID)
}
