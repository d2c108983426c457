package get_session_availability

import (
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
	getAvailability "github.com/m04kA/SMC-SessionBookingService/internal/usecase/get_session_availability"
)

// SessionStateResponse состояние видеосессии
type SessionStateResponse struct {
	CredentialsIssued bool `json:"credentialsIssued"`
	Participants      int  `json:"participants"`
	PublishedTracks   int  `json:"publishedTracks"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	BookingID       int64                       `json:"bookingId"`
	Status          string                      `json:"status"`
	IsPaid          bool                        `json:"isPaid"`
	CanGoLive       bool                        `json:"canGoLive"`
	IsOver          bool                        `json:"isOver"`
	IsUpcoming      bool                        `json:"isUpcoming"`
	TimeUntilOpenMs *int64                      `json:"timeUntilOpenMs"` // null, если подключение открыто или сессия прошла
	SessionStart    string                      `json:"sessionStart"`
	SessionEnd      string                      `json:"sessionEnd"`
	GoLiveOpensAt   string                      `json:"goLiveOpensAt"`
	Credentials     *models.CredentialsResponse `json:"credentials,omitempty"`
	Session         SessionStateResponse        `json:"session"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		BookingID:       resp.BookingID,
		Status:          string(resp.Status),
		IsPaid:          resp.IsPaid,
		CanGoLive:       resp.Window.CanGoLive,
		IsOver:          resp.Window.IsOver,
		IsUpcoming:      resp.Window.IsUpcoming,
		TimeUntilOpenMs: resp.Window.TimeUntilOpenMs(),
		SessionStart:    resp.Window.SessionStart.Format(time.RFC3339),
		SessionEnd:      resp.Window.SessionEnd.Format(time.RFC3339),
		GoLiveOpensAt:   resp.Window.GoLiveOpensAt.Format(time.RFC3339),
		Credentials:     models.FromDomainCredentials(resp.Credentials),
		Session: SessionStateResponse{
			CredentialsIssued: resp.Session.CredentialsIssued,
			Participants:      resp.Session.Participants,
			PublishedTracks:   resp.Session.PublishedTracks,
		},
	}
}
