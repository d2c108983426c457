package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	BookingDate string  `json:"bookingDate"` // "2025-10-20"
	StartTime   string  `json:"startTime"`   // "10:00"
	EndTime     string  `json:"endTime"`     // "11:00"
	Timezone    *string `json:"timezone,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RescheduleBookingRequest) ToServiceRequest() (*models.RescheduleRequest, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("bookingDate: %v", err)
	}
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("startTime: %v", err)
	}
	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, fmt.Errorf("endTime: %v", err)
	}

	return &models.RescheduleRequest{
		BookingDate: bookingDate,
		StartTime:   startTime,
		EndTime:     endTime,
		Timezone:    r.Timezone,
	}, nil
}
