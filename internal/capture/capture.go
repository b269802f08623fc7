// Package capture реализует службу захвата глобальных горячих клавиш:
// регистрацию привязок через платформенный бэкенд, цикл прослушивания
// с самовосстановлением и перерегистрацию по сигналам ОС.
package capture

import (
	"errors"
	"time"

	"cctrans/internal/binding"
)

// Event - нормализованное срабатывание горячей клавиши. Создаётся
// службой захвата, потребляется диспетчером ровно один раз.
type Event struct {
	// Name - идентификатор действия из привязки.
	Name string
	// Time - монотонная метка времени срабатывания.
	Time time.Time
}

// Disruption - сигнал ОС, после которого регистрации могут перестать
// действовать и требуют пересоздания.
type Disruption int

const (
	DisruptionInputLanguage Disruption = iota
	DisruptionPowerResume
	DisruptionSessionChange
)

func (d Disruption) String() string {
	switch d {
	case DisruptionInputLanguage:
		return "смена языка ввода"
	case DisruptionPowerResume:
		return "выход из сна"
	case DisruptionSessionChange:
		return "смена сессии"
	default:
		return "неизвестный сигнал"
	}
}

// RegisteredKey - одна действующая регистрация у бэкенда.
type RegisteredKey interface {
	// Keydown возвращает канал нажатий. После Unregister канал
	// больше не используется.
	Keydown() <-chan struct{}
	// Unregister снимает регистрацию. Идемпотентен.
	Unregister() error
}

// Backend абстрагирует платформенный API горячих клавиш, чтобы машина
// состояний оставалась платформенно-нейтральной и тестируемой.
type Backend interface {
	// Register регистрирует привязку и возвращает её дескриптор.
	Register(b binding.Binding) (RegisteredKey, error)
	// Disruptions возвращает канал сигналов ОС о сбоях регистрации.
	// nil, если платформа таких сигналов не даёт.
	Disruptions() <-chan Disruption
}

// ErrStartupTimeout возвращается из Start, если служба не успела
// дойти до состояния прослушивания. Приложение продолжает работать
// без горячих клавиш.
var ErrStartupTimeout = errors.New("служба горячих клавиш не запустилась за отведённое время")

// ErrStartFailed возвращается из Start, если цикл захвата завершился,
// не дойдя до прослушивания (например, ни одна привязка не
// зарегистрировалась).
var ErrStartFailed = errors.New("служба горячих клавиш не инициализировалась")
