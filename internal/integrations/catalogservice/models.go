package catalogservice

// Provider модель исполнителя из CatalogService
type Provider struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Timezone *string `json:"timezone,omitempty"`
	IsActive bool    `json:"is_active"`
}

// Service модель услуги исполнителя
type Service struct {
	ID              int64   `json:"id"`
	ProviderID      int64   `json:"provider_id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
