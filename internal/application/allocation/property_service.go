package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentbooks/backend/internal/domain/allocation"
)

// PropertyService manages the rental units that participate in allocations
type PropertyService struct {
	propertyRepo allocation.PropertyRepository
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(propertyRepo allocation.PropertyRepository) *PropertyService {
	return &PropertyService{propertyRepo: propertyRepo}
}

// CreatePropertyRequest represents a request to register a property
type CreatePropertyRequest struct {
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=200"`
}

// PropertyResponse represents a property in API responses
type PropertyResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProperty registers a new active property
func (s *PropertyService) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*PropertyResponse, error) {
	property, err := allocation.NewProperty(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}
	return toPropertyResponse(property), nil
}

// GetProperty gets a property by ID
func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPropertyResponse(property), nil
}

// ListProperties lists all properties
func (s *PropertyService) ListProperties(ctx context.Context) ([]PropertyResponse, error) {
	properties, err := s.propertyRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]PropertyResponse, len(properties))
	for i := range properties {
		responses[i] = *toPropertyResponse(&properties[i])
	}
	return responses, nil
}

// DeactivateProperty removes a property from future selections
func (s *PropertyService) DeactivateProperty(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	property.Deactivate()
	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}
	return toPropertyResponse(property), nil
}

func toPropertyResponse(property *allocation.Property) *PropertyResponse {
	return &PropertyResponse{
		ID:        property.ID,
		Code:      property.Code,
		Name:      property.Name,
		Active:    property.Active,
		CreatedAt: property.CreatedAt,
		UpdatedAt: property.UpdatedAt,
	}
}
