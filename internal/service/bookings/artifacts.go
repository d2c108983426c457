package bookings

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
)

// AttachReview добавляет отзыв заказчика к завершённой сессии
func (s *Service) AttachReview(ctx context.Context, bookingID, actorID int64, text string) (*domain.Booking, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: review is empty", ErrValidation)
	}
	if len([]rune(text)) > domain.MaxReviewLength {
		return nil, fmt.Errorf("%w: review exceeds %d characters", ErrValidation, domain.MaxReviewLength)
	}

	return s.mutate(ctx, "AttachReview", bookingID, func(b *domain.Booking) error {
		if b.RequesterID != actorID {
			s.logger.Warn("AttachReview: user=%d is not the requester of booking id=%d", actorID, bookingID)
			return ErrAccessDenied
		}
		if b.Status != domain.StatusCompleted {
			return conflict(b, "review")
		}
		b.Review = &text
		return nil
	})
}

// AttachRecording сохраняет ссылку на запись завершённой сессии
func (s *Service) AttachRecording(ctx context.Context, bookingID, actorID int64, rawURL string) (*domain.Booking, error) {
	recordingURL, err := validateRecordingURL(rawURL)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, "AttachRecording", bookingID, func(b *domain.Booking) error {
		if !b.IsParticipant(actorID) {
			s.logger.Warn("AttachRecording: user=%d is not a participant of booking id=%d", actorID, bookingID)
			return ErrAccessDenied
		}
		if b.Status != domain.StatusCompleted {
			return conflict(b, "attach recording to")
		}
		b.RecordingURL = &recordingURL
		return nil
	})
}

func validateRecordingURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: recording url is empty", ErrValidation)
	}
	if len(raw) > domain.MaxRecordingURLLength {
		return "", fmt.Errorf("%w: recording url exceeds %d characters", ErrValidation, domain.MaxRecordingURLLength)
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: recording url must be an absolute http(s) url", ErrValidation)
	}
	return raw, nil
}
