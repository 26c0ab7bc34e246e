package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sathiya272004/my-ecommerce-app/internal/domain"
	"github.com/sathiya272004/my-ecommerce-app/internal/repository"
	"go.uber.org/zap"
)

var addressValidator = newAddressValidator()

// newAddressValidator reports fields by their json names.
func newAddressValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type AddressInput struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"len=10,number"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Pincode   string `json:"pincode" validate:"len=6,number"`
	Type      string `json:"type"`
	IsDefault bool   `json:"is_default"`
}

func (in AddressInput) normalize() AddressInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		in.Type = domain.DefaultAddressType
	}
	return in
}

func (in AddressInput) validate() error {
	err := addressValidator.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fieldProblem(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidAddress, strings.Join(problems, "; "))
}

func fieldProblem(fe validator.FieldError) string {
	switch {
	case fe.Tag() == "required":
		return fe.Field() + " is required"
	case fe.Field() == "phone":
		return "phone must be 10 digits"
	case fe.Field() == "pincode":
		return "pincode must be 6 digits"
	default:
		return fe.Field() + " is invalid"
	}
}

type AddressService struct {
	repo    repository.AddressRepository
	logger  *zap.Logger
	timeout time.Duration
}

func NewAddressService(repo repository.AddressRepository, logger *zap.Logger, timeout time.Duration) *AddressService {
	return &AddressService{
		repo:    repo,
		logger:  logger,
		timeout: timeout,
	}
}

// List returns the user's addresses with the default first.
func (s *AddressService) List(ctx context.Context, userID string) ([]domain.Address, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, storeError("list addresses", err)
	}
	return addresses, nil
}

func (s *AddressService) Get(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	address, err := s.repo.GetAddress(ctx, userID, addressID)
	if errors.Is(err, repository.ErrAddressNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, storeError("get address", err)
	}
	return address, nil
}

func (s *AddressService) Create(ctx context.Context, userID string, in AddressInput) (*domain.Address, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	address := &domain.Address{
		UserID:    userID,
		Name:      in.Name,
		Phone:     in.Phone,
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		Pincode:   in.Pincode,
		Type:      in.Type,
		IsDefault: in.IsDefault,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreateAddress(ctx, address); err != nil {
		s.logger.Error("failed to create address", zap.String("user_id", userID), zap.Error(err))
		return nil, storeError("create address", err)
	}
	return address, nil
}
