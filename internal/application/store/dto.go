package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/shopspring/decimal"
)

// CreateStoreRequest represents a request to create a store
type CreateStoreRequest struct {
	Code      string   `json:"code" binding:"required,min=1,max=50"`
	Name      string   `json:"name" binding:"required,min=1,max=200"`
	Type      string   `json:"type" binding:"omitempty,oneof=BRAND PARTNER"`
	Phone     string   `json:"phone" binding:"omitempty,max=20"`
	Email     string   `json:"email" binding:"omitempty,email"`
	Address   string   `json:"address" binding:"max=500"`
	City      string   `json:"city" binding:"required,max=100"`
	State     string   `json:"state" binding:"max=100"`
	StateCode string   `json:"state_code" binding:"omitempty,len=2,numeric"`
	Pincode   string   `json:"pincode" binding:"required,len=6,numeric"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	GSTIN     string   `json:"gstin" binding:"omitempty,len=15"`
}

// UpdateStoreRequest replaces the editable store details
type UpdateStoreRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=200"`
	Phone     string   `json:"phone" binding:"omitempty,max=20"`
	Email     string   `json:"email" binding:"omitempty,email"`
	Address   string   `json:"address" binding:"max=500"`
	City      string   `json:"city" binding:"required,max=100"`
	State     string   `json:"state" binding:"max=100"`
	StateCode string   `json:"state_code" binding:"omitempty,len=2,numeric"`
	Pincode   string   `json:"pincode" binding:"required,len=6,numeric"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	GSTIN     string   `json:"gstin" binding:"omitempty,len=15"`
}

// StoreListFilter narrows store listings
type StoreListFilter struct {
	Search   string `form:"search"`
	City     string `form:"city"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
	Type     string `form:"type" binding:"omitempty,oneof=BRAND PARTNER"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StoreResponse represents a store in API responses
type StoreResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state,omitempty"`
	StateCode string    `json:"state_code,omitempty"`
	Pincode   string    `json:"pincode"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	GSTIN     string    `json:"gstin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// DeliverySettingsRequest carries the fee and timing knobs of a service area
type DeliverySettingsRequest struct {
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal `json:"min_order_amount"`
	MaxRadiusKm           float64         `json:"max_radius_km" binding:"min=0"`
	OpeningTime           string          `json:"opening_time" binding:"omitempty,len=5"`
	ClosingTime           string          `json:"closing_time" binding:"omitempty,len=5"`
	EstimatedMinutes      int             `json:"estimated_minutes" binding:"min=0,max=1440"`
	Priority              int             `json:"priority" binding:"min=0"`
}

func (r DeliverySettingsRequest) toDomain() store.DeliverySettings {
	return store.DeliverySettings{
		DeliveryFee:           r.DeliveryFee,
		FreeDeliveryThreshold: r.FreeDeliveryThreshold,
		MinOrderAmount:        r.MinOrderAmount,
		MaxRadiusKm:           r.MaxRadiusKm,
		OpeningTime:           r.OpeningTime,
		ClosingTime:           r.ClosingTime,
		EstimatedMinutes:      r.EstimatedMinutes,
		Priority:              r.Priority,
	}
}

// CreateServiceAreaRequest represents a request to create a service area
type CreateServiceAreaRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=200"`
	City     string   `json:"city" binding:"required,max=100"`
	Pincodes []string `json:"pincodes" binding:"required,min=1,dive,len=6,numeric"`
	DeliverySettingsRequest
}

// UpdateServiceAreaRequest replaces a service area's configuration
type UpdateServiceAreaRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=200"`
	City     string   `json:"city" binding:"required,max=100"`
	Pincodes []string `json:"pincodes" binding:"required,min=1,dive,len=6,numeric"`
	DeliverySettingsRequest
}

// ServiceAreaListFilter narrows service area listings
type ServiceAreaListFilter struct {
	StoreID  *uuid.UUID `form:"store_id"`
	City     string     `form:"city"`
	Pincode  string     `form:"pincode" binding:"omitempty,len=6,numeric"`
	IsActive *bool      `form:"is_active"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ServiceAreaResponse represents a service area in API responses
type ServiceAreaResponse struct {
	ID                    uuid.UUID       `json:"id"`
	StoreID               uuid.UUID       `json:"store_id"`
	Name                  string          `json:"name"`
	City                  string          `json:"city"`
	Pincodes              []string        `json:"pincodes"`
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal `json:"min_order_amount"`
	MaxRadiusKm           float64         `json:"max_radius_km"`
	OpeningTime           string          `json:"opening_time"`
	ClosingTime           string          `json:"closing_time"`
	EstimatedMinutes      int             `json:"estimated_minutes"`
	Priority              int             `json:"priority"`
	IsActive              bool            `json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	Version               int             `json:"version"`
}

// AvailabilityRequest asks whether a location can be served
type AvailabilityRequest struct {
	Pincode     string           `json:"pincode" form:"pincode" binding:"required,len=6,numeric"`
	City        string           `json:"city" form:"city"`
	Latitude    *float64         `json:"latitude" form:"lat" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64         `json:"longitude" form:"lng" binding:"omitempty,min=-180,max=180"`
	OrderAmount *decimal.Decimal `json:"order_amount" form:"order_amount"`
	At          *time.Time       `json:"at" form:"at" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CandidateResponse is one service area able to serve a request
type CandidateResponse struct {
	StoreID          uuid.UUID       `json:"store_id"`
	StoreName        string          `json:"store_name"`
	ServiceAreaID    uuid.UUID       `json:"service_area_id"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	DistanceKm       *float64        `json:"distance_km,omitempty"`
}

// AvailabilityResponse is the serviceability answer for a location
type AvailabilityResponse struct {
	Available        bool                `json:"available"`
	StoreID          *uuid.UUID          `json:"store_id,omitempty"`
	StoreName        string              `json:"store_name,omitempty"`
	ServiceAreaID    *uuid.UUID          `json:"service_area_id,omitempty"`
	DeliveryFee      *decimal.Decimal    `json:"delivery_fee,omitempty"`
	EstimatedMinutes int                 `json:"estimated_minutes,omitempty"`
	DistanceKm       *float64            `json:"distance_km,omitempty"`
	Reason           string              `json:"reason,omitempty"`
	Message          string              `json:"message,omitempty"`
	Alternatives     []CandidateResponse `json:"alternatives"`
}

// ToStoreResponse converts a domain store to a response DTO
func ToStoreResponse(s *store.Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID,
		Code:      s.Code,
		Name:      s.Name,
		Type:      string(s.Type),
		Status:    string(s.Status),
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		StateCode: s.StateCode,
		Pincode:   s.Pincode,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		GSTIN:     s.GSTIN,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Version:   s.Version,
	}
}

// ToStoreResponses converts a slice of stores
func ToStoreResponses(stores []store.Store) []StoreResponse {
	out := make([]StoreResponse, len(stores))
	for i := range stores {
		out[i] = ToStoreResponse(&stores[i])
	}
	return out
}

// ToServiceAreaResponse converts a domain service area to a response DTO
func ToServiceAreaResponse(a *store.ServiceArea) ServiceAreaResponse {
	return ServiceAreaResponse{
		ID:                    a.ID,
		StoreID:               a.StoreID,
		Name:                  a.Name,
		City:                  a.City,
		Pincodes:              a.PincodeList(),
		DeliveryFee:           a.DeliveryFee,
		FreeDeliveryThreshold: a.FreeDeliveryThreshold,
		MinOrderAmount:        a.MinOrderAmount,
		MaxRadiusKm:           a.MaxRadiusKm,
		OpeningTime:           a.OpeningTime,
		ClosingTime:           a.ClosingTime,
		EstimatedMinutes:      a.EstimatedMinutes,
		Priority:              a.Priority,
		IsActive:              a.IsActive,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
		Version:               a.Version,
	}
}

// ToServiceAreaResponses converts a slice of service areas
func ToServiceAreaResponses(areas []store.ServiceArea) []ServiceAreaResponse {
	out := make([]ServiceAreaResponse, len(areas))
	for i := range areas {
		out[i] = ToServiceAreaResponse(&areas[i])
	}
	return out
}

func toCandidateResponse(c store.RouteCandidate) CandidateResponse {
	return CandidateResponse{
		StoreID:          c.Store.ID,
		StoreName:        c.Store.Name,
		ServiceAreaID:    c.Area.ID,
		DeliveryFee:      c.DeliveryFee,
		EstimatedMinutes: c.Area.EstimatedMinutes,
		DistanceKm:       c.DistanceKm,
	}
}

// ToAvailabilityResponse converts a routing result to a response DTO
func ToAvailabilityResponse(r store.RouteResult) AvailabilityResponse {
	resp := AvailabilityResponse{
		Available:    r.Available,
		Alternatives: make([]CandidateResponse, 0, len(r.Alternatives)),
	}
	if !r.Available {
		resp.Reason = string(r.Reason)
		resp.Message = r.Reason.Message()
		return resp
	}

	sel := toCandidateResponse(*r.Selected)
	resp.StoreID = &sel.StoreID
	resp.StoreName = sel.StoreName
	resp.ServiceAreaID = &sel.ServiceAreaID
	resp.DeliveryFee = &sel.DeliveryFee
	resp.EstimatedMinutes = sel.EstimatedMinutes
	resp.DistanceKm = sel.DistanceKm
	for _, alt := range r.Alternatives {
		resp.Alternatives = append(resp.Alternatives, toCandidateResponse(alt))
	}
	return resp
}
