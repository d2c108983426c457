package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SessionBookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	RequesterID int64            // ID заказчика (из X-User-ID)
	ProviderID  int64            // ID исполнителя
	ServiceID   int64            // ID услуги исполнителя
	Date        time.Time        // Дата сессии (без времени)
	StartTime   types.TimeString // "10:00"
	EndTime     types.TimeString // пусто - по длительности услуги
	Timezone    *string          // IANA метка, пусто - метка исполнителя
	Notes       *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID          int64
	RequesterID int64
	ProviderID  int64
	ServiceID   int64
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Timezone    *string
	Status      string

	// Денормализованные данные
	ServiceName string
	Price       float64
	Currency    string
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
