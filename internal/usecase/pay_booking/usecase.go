package pay_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SessionBookingService/internal/infra/locker"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
)

// DefaultAttemptTTL время жизни блокировки попытки оплаты
const DefaultAttemptTTL = 2 * time.Minute

// attemptBudget срок работы попытки под блокировкой
// Попытка завершается раньше, чем истечёт блокировка: 10% TTL остаётся на MarkPaid и Release
func attemptBudget(ttl time.Duration) time.Duration {
	return ttl - ttl/10
}

// UseCase use case оплаты бронирования: блокировка попытки -> движок оплаты -> MarkPaid
type UseCase struct {
	bookingService BookingService
	engine         PaymentEngine
	locker         AttemptLocker
	attemptTTL     time.Duration
	recorder       OutcomeRecorder
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingService BookingService,
	engine PaymentEngine,
	attemptLocker AttemptLocker,
	attemptTTL time.Duration,
	recorder OutcomeRecorder,
	logger Logger,
) *UseCase {
	if attemptTTL <= 0 {
		attemptTTL = DefaultAttemptTTL
	}
	return &UseCase{
		bookingService: bookingService,
		engine:         engine,
		locker:         attemptLocker,
		attemptTTL:     attemptTTL,
		recorder:       recorder,
		logger:         logger,
	}
}

// Execute проводит одну попытку оплаты
// MarkPaid вызывается не более одного раза и только если вызывающий ещё ждёт результат
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PayBooking: booking id=%d by user=%d", req.BookingID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("PayBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Одна попытка на бронирование
	lock, err := uc.locker.Acquire(ctx, locker.PaymentKey(req.BookingID), uc.attemptTTL)
	if err != nil {
		if errors.Is(err, locker.ErrLockHeld) {
			uc.logger.Warn("PayBooking: booking id=%d already has an attempt in progress", req.BookingID)
			return nil, ErrPaymentInProgress
		}
		uc.logger.Error("PayBooking: failed to acquire lock for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrInternal, err)
	}
	defer func() {
		// Блокировку освобождаем и после отмены запроса
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("PayBooking: failed to release lock for booking id=%d: %v", req.BookingID, err)
		}
	}()

	// Всё под блокировкой укладывается в срок попытки: после истечения блокировки
	// следующий submit может захватить её, и эта попытка уже не вправе отмечать оплату
	attemptCtx, cancel := context.WithTimeout(ctx, attemptBudget(uc.attemptTTL))
	defer cancel()

	// 3. Бронирование под блокировкой
	booking, err := uc.bookingService.GetByID(attemptCtx, req.BookingID, req.UserID)
	if err != nil {
		return nil, err
	}
	if booking.RequesterID != req.UserID {
		uc.logger.Warn("PayBooking: user=%d is not the requester of booking id=%d", req.UserID, req.BookingID)
		return nil, fmt.Errorf("%w: only the requester pays", bookings.ErrAccessDenied)
	}
	if booking.IsPaid {
		uc.logger.Warn("PayBooking: booking id=%d is already paid", req.BookingID)
		return nil, ErrAlreadyPaid
	}
	if !booking.NeedsPayment() {
		uc.logger.Warn("PayBooking: booking id=%d in status %s does not need payment", req.BookingID, booking.Status)
		return nil, fmt.Errorf("%w: status %s", ErrNothingToPay, booking.Status)
	}

	// 4. Протокол оплаты
	outcome, err := uc.engine.Reconcile(attemptCtx, &payment.Request{
		BookingID:    booking.ID,
		ClientSecret: *booking.PaymentIntentClientSecret,
		Instrument:   payment.Instrument{PaymentMethodID: strings.TrimSpace(req.PaymentMethodID)},
		Billing:      req.Billing,
	})
	if err != nil {
		if action, ok := payment.RequiredAction(err); ok {
			uc.recorder.ObservePaymentOutcome("requires_action", "action_required")
			uc.logger.Info("PayBooking: booking id=%d waits for customer action %q", req.BookingID, action.NextAction.Type)
			return nil, err
		}
		reason := failureReason(err)
		uc.recorder.ObservePaymentOutcome("failed", reason)
		uc.logger.Warn("PayBooking: booking id=%d payment failed (%s): %v", req.BookingID, reason, err)
		return nil, err
	}

	// 5. Ответ шлюза отбрасывается, если клиент ушёл или срок попытки вышел:
	// следующая попытка увидит succeeded и отметит оплату сама
	if err := attemptCtx.Err(); err != nil {
		reason := "cancelled"
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			reason = "deadline_exceeded"
		}
		uc.recorder.ObservePaymentOutcome("failed", reason)
		uc.logger.Warn("PayBooking: booking id=%d result discarded after success (%s)", req.BookingID, reason)
		return nil, fmt.Errorf("%w: %v", payment.ErrAttemptCancelled, err)
	}

	// 6. Ровно одна отметка об оплате
	updated, err := uc.bookingService.MarkPaid(attemptCtx, booking.ID, outcome)
	if err != nil {
		uc.recorder.ObservePaymentOutcome("failed", "mark_paid")
		uc.logger.Error("PayBooking: booking id=%d paid at gateway (intent=%s) but MarkPaid failed: %v",
			req.BookingID, outcome.IntentID, err)
		return nil, err
	}

	reason := "confirmed"
	if !outcome.Confirmed {
		reason = "already_succeeded"
	}
	uc.recorder.ObservePaymentOutcome("succeeded", reason)
	uc.logger.Info("PayBooking: booking id=%d paid, intent=%s retries=%d", req.BookingID, outcome.IntentID, outcome.RetryCount)

	return &Response{Booking: updated, Outcome: outcome}, nil
}
