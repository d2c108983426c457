package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-SessionBookingService/internal/integrations/videoservice"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/sessionevents"
)

// Approve принимает бронирование исполнителем: awaiting_approval|rescheduled -> accepted
// Побочный эффект: выпуск payment intent, id и client secret сохраняются в бронировании
func (s *Service) Approve(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	s.logger.Info("Approve: booking id=%d by user=%d", bookingID, actorID)

	booking, err := s.load(ctx, "Approve", bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ProviderID != actorID {
		s.logger.Warn("Approve: user=%d is not the provider of booking id=%d", actorID, bookingID)
		return nil, ErrAccessDenied
	}
	if !booking.Status.CanTransitionTo(domain.StatusAccepted) {
		s.logger.Warn("Approve: booking id=%d in status %s", bookingID, booking.Status)
		return nil, conflict(booking, "approve")
	}

	// Сетевой вызов до транзакции, чтобы не держать блокировку строки
	intent, err := s.issuer.CreateIntent(ctx, stripegateway.IntentRequest{
		BookingID:      booking.ID,
		Amount:         booking.Price,
		Currency:       booking.Currency,
		IdempotencyKey: intentIdempotencyKey(booking),
	})
	if err != nil {
		s.logger.Error("Approve: failed to create payment intent for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	updated, err := s.mutate(ctx, "Approve", bookingID, func(b *domain.Booking) error {
		if b.ProviderID != actorID {
			return ErrAccessDenied
		}
		if !b.Status.CanTransitionTo(domain.StatusAccepted) {
			return conflict(b, "approve")
		}
		// Бронирование изменилось, пока выпускался intent
		if !b.UpdatedAt.Equal(booking.UpdatedAt) {
			return fmt.Errorf("%w: booking id=%d changed concurrently", ErrStateConflict, b.ID)
		}

		b.Status = domain.StatusAccepted
		b.PaymentIntentID = &intent.ID
		b.PaymentIntentClientSecret = &intent.ClientSecret
		return nil
	})
	if err != nil {
		// При внутренней ошибке intent остаётся: повтор с тем же ключом идемпотентности вернёт его же
		if !errors.Is(err, ErrInternal) {
			s.cancelIntent(ctx, "Approve", intent.ID)
		}
		return nil, err
	}

	return updated, nil
}

// Reject отклоняет бронирование исполнителем: awaiting_approval -> rejected
// Повторный вызов для уже отклонённого бронирования ничего не меняет
func (s *Service) Reject(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	s.logger.Info("Reject: booking id=%d by user=%d", bookingID, actorID)

	return s.mutate(ctx, "Reject", bookingID, func(b *domain.Booking) error {
		if b.ProviderID != actorID {
			s.logger.Warn("Reject: user=%d is not the provider of booking id=%d", actorID, bookingID)
			return ErrAccessDenied
		}
		if b.Status == domain.StatusRejected {
			return errNoop
		}
		if !b.Status.CanTransitionTo(domain.StatusRejected) {
			s.logger.Warn("Reject: booking id=%d in status %s", bookingID, b.Status)
			return conflict(b, "reject")
		}

		b.Status = domain.StatusRejected
		return nil
	})
}

// Reschedule переносит сессию: awaiting_approval|accepted -> rescheduled
// Выпущенный ранее payment intent сбрасывается и отменяется в шлюзе
func (s *Service) Reschedule(ctx context.Context, bookingID, actorID int64, req *models.RescheduleRequest) (*domain.Booking, error) {
	window := req.Window()
	s.logger.Info("Reschedule: booking id=%d by user=%d to %s %s-%s", bookingID, actorID,
		window.BookingDate.Format(domain.DateFormat), window.StartTime, window.EndTime)

	if err := availability.ValidateWindow(window, s.timeProvider.Now()); err != nil {
		s.logger.Warn("Reschedule: invalid window for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	from, to, err := availability.SessionInterval(window.BookingDate, window.StartTime, window.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var staleIntentID string

	updated, err := s.mutateTx(ctx, "Reschedule", bookingID, func(txCtx context.Context, b *domain.Booking) error {
		if !b.IsParticipant(actorID) {
			s.logger.Warn("Reschedule: user=%d is not a participant of booking id=%d", actorID, bookingID)
			return ErrAccessDenied
		}
		if !b.Status.CanTransitionTo(domain.StatusRescheduled) {
			s.logger.Warn("Reschedule: booking id=%d in status %s", bookingID, b.Status)
			return conflict(b, "reschedule")
		}

		// Новое окно не должно пересекаться с другими сессиями исполнителя, само бронирование не считается
		sessions, err := s.bookingRepo.ListByUser(txCtx, availability.ProviderSessionsAround(b.ProviderID, window.BookingDate))
		if err != nil {
			s.logger.Error("Reschedule: failed to get provider bookings for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Reschedule - provider bookings: %v", ErrInternal, err)
		}
		overlapping, err := availability.CountOverlapping(from, to, sessions, domain.ByID(b.ID))
		if err != nil {
			s.logger.Error("Reschedule: failed to count overlapping bookings for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Reschedule - overlapping bookings: %v", ErrInternal, err)
		}
		if overlapping > 0 {
			s.logger.Warn("Reschedule: provider id=%d has %d active sessions at %s %s-%s",
				b.ProviderID, overlapping, window.BookingDate.Format(domain.DateFormat), window.StartTime, window.EndTime)
			return fmt.Errorf("%w: provider is busy at %s %s-%s", ErrStateConflict,
				window.BookingDate.Format(domain.DateFormat), window.StartTime, window.EndTime)
		}

		if b.PaymentIntentID != nil {
			staleIntentID = *b.PaymentIntentID
		}
		b.BookingDate = window.BookingDate
		b.StartTime = window.StartTime
		b.EndTime = window.EndTime
		b.Timezone = window.Timezone
		b.ClearPaymentIntent()
		b.Status = domain.StatusRescheduled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if staleIntentID != "" {
		s.cancelIntent(ctx, "Reschedule", staleIntentID)
	}
	return updated, nil
}

// MarkPaid фиксирует успешную оплату: accepted -> paid, isPaid = true, выдаются учётные данные сессии
// Вызывается только по успешному итогу движка оплаты; это граница гарантии "ровно один раз"
//
// Уже оплаченное бронирование - ErrStateConflict, любой другой статус - ErrInvariantViolation
func (s *Service) MarkPaid(ctx context.Context, bookingID int64, outcome *payment.Outcome) (*domain.Booking, error) {
	if outcome == nil || outcome.Status != payment.StatusSucceeded {
		s.logger.Error("MarkPaid: DEFECT booking id=%d called without a successful outcome", bookingID)
		return nil, fmt.Errorf("%w: markPaid without a successful payment outcome", ErrInvariantViolation)
	}
	s.logger.Info("MarkPaid: booking id=%d intent=%s amount=%d %s",
		bookingID, outcome.IntentID, outcome.Amount, outcome.Currency)

	booking, err := s.load(ctx, "MarkPaid", bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPayable(booking, outcome); err != nil {
		return nil, err
	}

	// Без учётных данных бронирование всё равно отмечается оплаченным, их можно выдать позже
	creds := s.issueCredentials(ctx, booking)

	updated, err := s.mutate(ctx, "MarkPaid", bookingID, func(b *domain.Booking) error {
		if err := s.checkPayable(b, outcome); err != nil {
			return err
		}

		now := s.timeProvider.Now()
		b.IsPaid = true
		b.PaidAt = &now
		b.Status = domain.StatusPaid
		b.Credentials = creds
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !updated.Credentials.IsEmpty() {
		s.publish(updated.ID, sessionevents.EventCredentialsIssued, 0)
	}
	return updated, nil
}

// Complete завершает сессию любым участником: paid -> completed
func (s *Service) Complete(ctx context.Context, bookingID, actorID int64) (*domain.Booking, error) {
	s.logger.Info("Complete: booking id=%d by user=%d", bookingID, actorID)

	var hadCredentials bool

	updated, err := s.mutate(ctx, "Complete", bookingID, func(b *domain.Booking) error {
		if !b.IsParticipant(actorID) {
			s.logger.Warn("Complete: user=%d is not a participant of booking id=%d", actorID, bookingID)
			return ErrAccessDenied
		}
		if !b.Status.CanTransitionTo(domain.StatusCompleted) {
			s.logger.Warn("Complete: booking id=%d in status %s", bookingID, b.Status)
			return conflict(b, "complete")
		}

		hadCredentials = !b.Credentials.IsEmpty()
		b.Credentials = nil
		b.Status = domain.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hadCredentials {
		s.revokeCredentials(ctx, "Complete", bookingID)
	}
	return updated, nil
}

// Cancel отменяет бронирование из любого нетерминального статуса
func (s *Service) Cancel(ctx context.Context, bookingID, actorID int64, reason string) (*domain.Booking, error) {
	s.logger.Info("Cancel: booking id=%d by user=%d", bookingID, actorID)

	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrValidation, domain.MaxCancellationReasonLength)
	}

	var (
		hadCredentials bool
		staleIntentID  string
		wasPaid        bool
	)

	updated, err := s.mutate(ctx, "Cancel", bookingID, func(b *domain.Booking) error {
		if !b.IsParticipant(actorID) {
			s.logger.Warn("Cancel: user=%d is not a participant of booking id=%d", actorID, bookingID)
			return ErrAccessDenied
		}
		if !b.Status.CanTransitionTo(domain.StatusCancelled) {
			s.logger.Warn("Cancel: booking id=%d in status %s", bookingID, b.Status)
			return conflict(b, "cancel")
		}

		hadCredentials = !b.Credentials.IsEmpty()
		wasPaid = b.IsPaid
		if !b.IsPaid && b.PaymentIntentID != nil {
			staleIntentID = *b.PaymentIntentID
		}

		now := s.timeProvider.Now()
		if reason != "" {
			b.CancellationReason = &reason
		}
		b.CancelledAt = &now
		b.Credentials = nil
		b.Status = domain.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hadCredentials {
		s.revokeCredentials(ctx, "Cancel", bookingID)
	}
	if staleIntentID != "" {
		s.cancelIntent(ctx, "Cancel", staleIntentID)
	}
	if wasPaid {
		s.logger.Warn("Cancel: booking id=%d was paid, refund is not issued automatically", bookingID)
	}
	return updated, nil
}

// EnsureCredentials выдает учётные данные оплаченной сессии, если при оплате их получить не удалось
func (s *Service) EnsureCredentials(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.load(ctx, "EnsureCredentials", bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsSettled() || !booking.Credentials.IsEmpty() {
		return booking, nil
	}

	creds := s.issueCredentials(ctx, booking)
	if creds == nil {
		return booking, fmt.Errorf("%w: credentials for booking id=%d are unavailable", ErrInternal, bookingID)
	}

	stored := false
	updated, err := s.mutate(ctx, "EnsureCredentials", bookingID, func(b *domain.Booking) error {
		if !b.IsSettled() || !b.Credentials.IsEmpty() {
			return errNoop
		}
		b.Credentials = creds
		stored = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if stored {
		s.publish(bookingID, sessionevents.EventCredentialsIssued, 0)
	}
	return updated, nil
}

// checkPayable общий предикат для MarkPaid и кнопки оплаты
func (s *Service) checkPayable(b *domain.Booking, outcome *payment.Outcome) error {
	if b.IsPaid {
		s.logger.Warn("MarkPaid: booking id=%d is already paid (status %s)", b.ID, b.Status)
		return fmt.Errorf("%w: booking id=%d is already paid", ErrStateConflict, b.ID)
	}
	if !b.NeedsPayment() {
		s.logger.Error("MarkPaid: DEFECT booking id=%d in status %s does not need payment", b.ID, b.Status)
		return fmt.Errorf("%w: markPaid from status %s", ErrInvariantViolation, b.Status)
	}
	if *b.PaymentIntentID != outcome.IntentID {
		s.logger.Error("MarkPaid: DEFECT booking id=%d intent %s, outcome intent %s",
			b.ID, *b.PaymentIntentID, outcome.IntentID)
		return fmt.Errorf("%w: payment outcome belongs to another intent", ErrInvariantViolation)
	}
	return nil
}

func (s *Service) issueCredentials(ctx context.Context, b *domain.Booking) *domain.SessionCredentials {
	creds, err := s.videoClient.IssueCredentials(ctx, videoservice.IssueRequest{
		BookingID:   b.ID,
		RequesterID: b.RequesterID,
		ProviderID:  b.ProviderID,
	})
	if err != nil {
		s.logger.Error("issueCredentials: booking id=%d: %v", b.ID, err)
		return nil
	}
	return &domain.SessionCredentials{Channel: creds.Channel, Token: creds.Token, UID: creds.UID}
}

func (s *Service) revokeCredentials(ctx context.Context, op string, bookingID int64) {
	if err := s.videoClient.RevokeCredentials(ctx, bookingID); err != nil {
		s.logger.Warn("%s: failed to revoke credentials for booking id=%d: %v", op, bookingID, err)
	}
	s.publish(bookingID, sessionevents.EventCredentialsRevoked, 0)
}

func (s *Service) cancelIntent(ctx context.Context, op, intentID string) {
	if err := s.issuer.CancelIntent(ctx, intentID); err != nil {
		s.logger.Warn("%s: failed to cancel payment intent %s: %v", op, intentID, err)
		return
	}
	s.logger.Info("%s: payment intent %s cancelled", op, intentID)
}

// intentIdempotencyKey один ключ на одну версию бронирования
func intentIdempotencyKey(b *domain.Booking) string {
	name := fmt.Sprintf("booking:%d:approve:%d", b.ID, b.UpdatedAt.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
