package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.RequesterID <= 0 {
		return fmt.Errorf("%w: requesterID must be positive", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.RequesterID == req.ProviderID {
		return fmt.Errorf("%w: cannot book a session with yourself", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// resolveEndTime время окончания из запроса либо по длительности услуги
func resolveEndTime(req *Request, durationMinutes *int) (types.TimeString, error) {
	if !req.EndTime.IsZero() {
		return req.EndTime, nil
	}
	if durationMinutes == nil || *durationMinutes <= 0 {
		return "", fmt.Errorf("%w: endTime is required for a service without duration", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return "", fmt.Errorf("%w: startTime: %v", ErrInvalidWindow, err)
	}

	// Сессия может перейти через полночь
	end, _, err := req.StartTime.AddMinutes(*durationMinutes)
	if err != nil {
		return "", fmt.Errorf("%w: duration %d minutes: %v", ErrInvalidWindow, *durationMinutes, err)
	}
	return end, nil
}

// resolveTimezone метка из запроса, иначе метка исполнителя
func resolveTimezone(requested, providerTZ *string) *string {
	if requested != nil {
		tz := strings.TrimSpace(*requested)
		return &tz
	}
	if providerTZ != nil && strings.TrimSpace(*providerTZ) != "" {
		tz := strings.TrimSpace(*providerTZ)
		return &tz
	}
	return nil
}
