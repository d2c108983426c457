package pay_booking

import (
	"github.com/m04kA/SMC-SessionBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionBookingService/internal/service/payment"
	payBooking "github.com/m04kA/SMC-SessionBookingService/internal/usecase/pay_booking"
)

// BillingDetails платёжные данные плательщика
type BillingDetails struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// PayBookingRequest HTTP request model
type PayBookingRequest struct {
	PaymentMethodID string         `json:"paymentMethodId"` // pm_... токенизированное на клиенте средство
	Billing         BillingDetails `json:"billing"`
}

// PaymentResponse итог оплаты
type PaymentResponse struct {
	IntentID   string `json:"intentId"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	RetryCount int    `json:"retryCount"`
	Confirmed  bool   `json:"confirmed"`
}

// NextActionResponse действие, которое клиент выполняет до повторной отправки формы
type NextActionResponse struct {
	Type        string `json:"type"`                  // redirect_to_url | use_stripe_sdk
	RedirectURL string `json:"redirectUrl,omitempty"` // страница 3-D Secure для redirect_to_url
	ReturnURL   string `json:"returnUrl,omitempty"`
}

// ActionRequiredResponse ответ 202: оплата ждёт step-up аутентификации
type ActionRequiredResponse struct {
	Status     string             `json:"status"`
	IntentID   string             `json:"intentId"`
	NextAction NextActionResponse `json:"nextAction"`
}

// FromActionRequired конвертирует ожидание действия клиента в HTTP response
func FromActionRequired(a *payment.ActionRequiredError) *ActionRequiredResponse {
	return &ActionRequiredResponse{
		Status:   string(payment.StatusRequiresAction),
		IntentID: a.IntentID,
		NextAction: NextActionResponse{
			Type:        a.NextAction.Type,
			RedirectURL: a.NextAction.RedirectURL,
			ReturnURL:   a.NextAction.ReturnURL,
		},
	}
}

// PayBookingResponse HTTP response model
type PayBookingResponse struct {
	Booking *models.BookingResponse `json:"booking"`
	Payment PaymentResponse         `json:"payment"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *PayBookingRequest) ToUseCaseRequest(bookingID, userID int64) *payBooking.Request {
	return &payBooking.Request{
		BookingID:       bookingID,
		UserID:          userID,
		PaymentMethodID: r.PaymentMethodID,
		Billing: payment.BillingDetails{
			Name:       r.Billing.Name,
			Email:      r.Billing.Email,
			Phone:      r.Billing.Phone,
			PostalCode: r.Billing.PostalCode,
			Country:    r.Billing.Country,
		},
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *payBooking.Response, viewerID int64) *PayBookingResponse {
	return &PayBookingResponse{
		Booking: models.FromDomainBooking(resp.Booking, viewerID),
		Payment: PaymentResponse{
			IntentID:   resp.Outcome.IntentID,
			Status:     string(resp.Outcome.Status),
			Amount:     resp.Outcome.Amount,
			Currency:   resp.Outcome.Currency,
			RetryCount: resp.Outcome.RetryCount,
			Confirmed:  resp.Outcome.Confirmed,
		},
	}
}
