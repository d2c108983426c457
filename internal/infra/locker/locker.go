package locker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLockHeld возвращается, если блокировка уже захвачена другой попыткой
	ErrLockHeld = errors.New("locker: lock is held")
	// ErrLockBackend ошибка хранилища блокировок
	ErrLockBackend = errors.New("locker: backend error")
)

// Lock захваченная блокировка, освобождается через Release
type Lock interface {
	Release(ctx context.Context) error
}

// Locker выдает эксклюзивные блокировки по ключу с ограниченным временем жизни
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// PaymentKey ключ блокировки попытки оплаты бронирования
func PaymentKey(bookingID int64) string {
	return fmt.Sprintf("booking:%d:payment", bookingID)
}
