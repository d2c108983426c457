package stripegateway

// Config параметры подключения к Stripe
type Config struct {
	SecretKey string
	ReturnURL string // куда возвращать клиента после 3DS
	APIURL    string // переопределение адреса API (stripe-mock, тесты)
}

// IntentRequest запрос на создание payment intent для бронирования
type IntentRequest struct {
	BookingID      int64
	Amount         float64 // в основных единицах валюты
	Currency       string
	IdempotencyKey string
}

// Intent созданный payment intent
type Intent struct {
	ID           string
	ClientSecret string
}
