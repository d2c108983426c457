package create_booking

import "errors"

var (
	// ErrProviderNotFound возвращается, когда исполнитель не найден или неактивен
	ErrProviderNotFound = errors.New("create_booking: provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена у исполнителя
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrInvalidWindow возвращается при некорректной дате или времени сессии
	ErrInvalidWindow = errors.New("create_booking: invalid session window")

	// ErrSlotNotAvailable возвращается, когда у исполнителя уже есть активная сессия в это время
	ErrSlotNotAvailable = errors.New("create_booking: provider is busy at this time")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
