package cancel_booking

// CancelBookingRequest HTTP request model, тело необязательно
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// Reason причина отмены или пустая строка
func (r *CancelBookingRequest) Reason() string {
	if r.CancellationReason == nil {
		return ""
	}
	return *r.CancellationReason
}
