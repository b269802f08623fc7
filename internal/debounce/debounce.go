// Package debounce превращает N последовательных нажатий в одно
// логическое срабатывание внутри заданного окна времени.
package debounce

import "time"

// Detector отслеживает серию нажатий одного действия. Экземпляр
// принадлежит ровно одному действию и одному потоку-диспетчеру,
// поэтому не требует блокировок.
type Detector struct {
	required int
	interval time.Duration
	now      func() time.Time

	last  time.Time
	count int
}

// New создаёт детектор: required нажатий с промежутком не более
// interval между соседними. required меньше 1 трактуется как 1.
func New(required int, interval time.Duration, now func() time.Time) *Detector {
	if required < 1 {
		required = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Detector{required: required, interval: interval, now: now}
}

// Register регистрирует нажатие с меткой времени ts (нулевое значение -
// текущий момент). Возвращает true, когда серия завершена; счётчик при
// этом сбрасывается в ноль. Промежуток ровно в interval считается
// попаданием в окно.
func (d *Detector) Register(ts time.Time) bool {
	if ts.IsZero() {
		ts = d.now()
	}
	if !d.last.IsZero() && ts.Sub(d.last) <= d.interval {
		d.count++
	} else {
		d.count = 1
	}
	d.last = ts

	if d.count >= d.required {
		d.count = 0
		return true
	}
	return false
}

// Reset принудительно начинает новую серию: следующий Register ведёт
// себя как первое нажатие независимо от времени. Используется после
// восстановимых ошибок (например, сбой чтения буфера обмена), чтобы
// неудавшаяся попытка не засчитывалась в серию.
func (d *Detector) Reset() {
	d.last = time.Time{}
	d.count = 0
}

// Count возвращает текущий счётчик серии (для диагностики).
func (d *Detector) Count() int {
	return d.count
}
