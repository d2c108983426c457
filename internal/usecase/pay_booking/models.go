package pay_booking

import (
	"github.com/m04kA/SMC-SessionBookingService/internal/domain"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
)

// Request запрос на оплату бронирования
// Client secret берётся из бронирования, клиент передаёт только платёжное средство
type Request struct {
	BookingID       int64
	UserID          int64
	PaymentMethodID string
	Billing         payment.BillingDetails
}

// Response итог оплаты
type Response struct {
	Booking *domain.Booking
	Outcome *payment.Outcome
}
