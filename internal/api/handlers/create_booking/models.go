package create_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SessionBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID  int64   `json:"providerId"`
	ServiceID   int64   `json:"serviceId"`
	BookingDate string  `json:"bookingDate"`       // "2025-10-15"
	StartTime   string  `json:"startTime"`         // "10:00"
	EndTime     string  `json:"endTime,omitempty"` // пусто - по длительности услуги
	Timezone    *string `json:"timezone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID          int64   `json:"id"`
	RequesterID int64   `json:"requesterId"`
	ProviderID  int64   `json:"providerId"`
	ServiceID   int64   `json:"serviceId"`
	BookingDate string  `json:"bookingDate"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Timezone    *string `json:"timezone,omitempty"`
	Status      string  `json:"status"`
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Notes       *string `json:"notes,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// errInvalidDate и errInvalidTime различают ошибки разбора для текста ответа
var (
	errInvalidDate = errors.New("invalid booking date")
	errInvalidTime = errors.New("invalid time")
)

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(requesterID int64) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", errInvalidTime, err)
	}

	var endTime types.TimeString
	if r.EndTime != "" {
		if endTime, err = types.NewTimeStringFromString(r.EndTime); err != nil {
			return nil, fmt.Errorf("%w: endTime: %v", errInvalidTime, err)
		}
	}

	return &createBooking.Request{
		RequesterID: requesterID,
		ProviderID:  r.ProviderID,
		ServiceID:   r.ServiceID,
		Date:        bookingDate,
		StartTime:   startTime,
		EndTime:     endTime,
		Timezone:    r.Timezone,
		Notes:       r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:          resp.ID,
		RequesterID: resp.RequesterID,
		ProviderID:  resp.ProviderID,
		ServiceID:   resp.ServiceID,
		BookingDate: resp.BookingDate.Format(domain.DateFormat),
		StartTime:   resp.StartTime.String(),
		EndTime:     resp.EndTime.String(),
		Timezone:    resp.Timezone,
		Status:      resp.Status,
		ServiceName: resp.ServiceName,
		Price:       resp.Price,
		Currency:    resp.Currency,
		Notes:       resp.Notes,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   resp.UpdatedAt.Format(time.RFC3339),
	}
}
