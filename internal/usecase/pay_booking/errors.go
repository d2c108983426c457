package pay_booking

import "errors"

var (
	// ErrPaymentInProgress возвращается, если по бронированию уже идёт попытка оплаты
	ErrPaymentInProgress = errors.New("pay_booking: payment attempt already in progress")

	// ErrAlreadyPaid возвращается, если бронирование уже оплачено
	ErrAlreadyPaid = errors.New("pay_booking: booking is already paid")

	// ErrNothingToPay возвращается, если бронирование не ожидает оплаты
	ErrNothingToPay = errors.New("pay_booking: booking does not need payment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("pay_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("pay_booking: internal error")
)
