package videoservice

// IssueRequest запрос на выдачу учётных данных видеосессии
type IssueRequest struct {
	BookingID   int64 `json:"booking_id"`
	RequesterID int64 `json:"requester_id"`
	ProviderID  int64 `json:"provider_id"`
}

// Credentials учётные данные для подключения к видеотранспорту
type Credentials struct {
	Channel string `json:"channel"`
	Token   string `json:"token"`
	UID     string `json:"uid"`
}

// ErrorResponse модель ошибки от VideoService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
