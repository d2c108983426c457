package videoservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("videoservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("videoservice client: invalid response")

	// ErrUnauthorized возвращается, если VideoService отклонил сервисный токен
	ErrUnauthorized = errors.New("videoservice client: unauthorized")
)
