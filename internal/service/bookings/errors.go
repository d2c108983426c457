package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на операцию
	ErrAccessDenied = errors.New("access denied")

	// ErrValidation возвращается при некорректных входных данных (до любых изменений)
	ErrValidation = errors.New("validation error")

	// ErrStateConflict возвращается, если текущий статус не допускает операцию (устаревшее представление клиента)
	ErrStateConflict = errors.New("booking state conflict")

	// ErrInvariantViolation нарушение внутреннего контракта (дефект, а не пользовательская ошибка)
	ErrInvariantViolation = errors.New("booking invariant violation")

	// ErrPaymentUnavailable возвращается, если платёжный шлюз не выпустил intent
	ErrPaymentUnavailable = errors.New("payment provider unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// errNoop операция уже применена, запись не нужна
var errNoop = errors.New("no-op")
