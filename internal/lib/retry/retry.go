// Package retry реализует ограниченную политику повторов с фиксированным
// интервалом: максимум попыток, пауза между ними без роста задержки.
// Функция сна подменяется в тестах, чтобы не ждать реального времени.
package retry

import (
	"context"
	"time"
)

// Policy описывает параметры повторов. Пауза выполняется между попытками,
// то есть при MaxAttempts = 5 будет не более четырёх пауз.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
	// Sleep подменяет ожидание между попытками. Если nil, используется
	// обычный таймер с учётом отмены контекста.
	Sleep func(ctx context.Context, d time.Duration) error
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do вызывает fn до первого успешного результата либо до исчерпания попыток.
// Возвращает true, если fn сообщила об успехе. Ошибка fn прерывает повторы
// немедленно и возвращается вызывающему.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) (bool, error)) (bool, error) {
	doSleep := p.Sleep
	if doSleep == nil {
		doSleep = sleep
	}
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		ok, err := fn(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if attempt < p.MaxAttempts-1 {
			if err := doSleep(ctx, p.Interval); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}
