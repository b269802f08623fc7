// Package hotkey реализует платформенный бэкенд захвата поверх
// golang.design/x/hotkey. Пакет держится отдельно от машины состояний:
// библиотека при инициализации требует дисплей, а capture и его тесты
// должны работать и на headless-системах.
package hotkey

import (
	"fmt"
	"sync"

	xhotkey "golang.design/x/hotkey"

	"cctrans/internal/binding"
	"cctrans/internal/capture"
)

// Backend - продакшен-бэкенд горячих клавиш.
type Backend struct{}

var _ capture.Backend = (*Backend)(nil)

// NewBackend создаёт платформенный бэкенд горячих клавиш.
func NewBackend() *Backend {
	return &Backend{}
}

// keyMap - клавиши, поддерживаемые golang.design/x/hotkey на всех
// платформах. Привязка с клавишей вне этого набора получает ошибку
// регистрации и пропускается службой захвата.
var keyMap = map[string]xhotkey.Key{
	"space": xhotkey.KeySpace,
	"enter": xhotkey.KeyReturn,
	"tab":   xhotkey.KeyTab,
	"a":     xhotkey.KeyA,
	"b":     xhotkey.KeyB,
	"c":     xhotkey.KeyC,
	"d":     xhotkey.KeyD,
	"e":     xhotkey.KeyE,
	"f":     xhotkey.KeyF,
	"g":     xhotkey.KeyG,
	"h":     xhotkey.KeyH,
	"i":     xhotkey.KeyI,
	"j":     xhotkey.KeyJ,
	"k":     xhotkey.KeyK,
	"l":     xhotkey.KeyL,
	"m":     xhotkey.KeyM,
	"n":     xhotkey.KeyN,
	"o":     xhotkey.KeyO,
	"p":     xhotkey.KeyP,
	"q":     xhotkey.KeyQ,
	"r":     xhotkey.KeyR,
	"s":     xhotkey.KeyS,
	"t":     xhotkey.KeyT,
	"u":     xhotkey.KeyU,
	"v":     xhotkey.KeyV,
	"w":     xhotkey.KeyW,
	"x":     xhotkey.KeyX,
	"y":     xhotkey.KeyY,
	"z":     xhotkey.KeyZ,
	"f1":    xhotkey.KeyF1,
	"f2":    xhotkey.KeyF2,
	"f3":    xhotkey.KeyF3,
	"f4":    xhotkey.KeyF4,
	"f5":    xhotkey.KeyF5,
	"f6":    xhotkey.KeyF6,
	"f7":    xhotkey.KeyF7,
	"f8":    xhotkey.KeyF8,
	"f9":    xhotkey.KeyF9,
	"f10":   xhotkey.KeyF10,
	"f11":   xhotkey.KeyF11,
	"f12":   xhotkey.KeyF12,
}

// Register регистрирует привязку у ОС и возвращает её дескриптор.
func (b *Backend) Register(bd binding.Binding) (capture.RegisteredKey, error) {
	mods, err := platformModifiers(bd.Mods)
	if err != nil {
		return nil, err
	}
	key, ok := keyMap[bd.Key]
	if !ok {
		return nil, fmt.Errorf("клавиша %q не поддерживается бэкендом", bd.Key)
	}

	hk := xhotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("регистрация %s: %w", bd.Display, err)
	}

	rk := &registeredHotkey{
		hk:      hk,
		keydown: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	go rk.pump()
	return rk, nil
}

// Disruptions: x/hotkey не даёт доступа к системным сигналам вроде
// смены языка ввода, поэтому перерегистрацию здесь инициирует только
// явный RequestReregister (например, из меню трея).
func (b *Backend) Disruptions() <-chan capture.Disruption {
	return nil
}

type registeredHotkey struct {
	hk      *xhotkey.Hotkey
	keydown chan struct{}
	stop    chan struct{}
	once    sync.Once
}

// pump переливает события библиотеки в нейтральный канал дескриптора.
func (r *registeredHotkey) pump() {
	for {
		select {
		case <-r.stop:
			return
		case _, ok := <-r.hk.Keydown():
			if !ok {
				return
			}
			select {
			case r.keydown <- struct{}{}:
			case <-r.stop:
				return
			}
		}
	}
}

func (r *registeredHotkey) Keydown() <-chan struct{} {
	return r.keydown
}

func (r *registeredHotkey) Unregister() error {
	var err error
	r.once.Do(func() {
		close(r.stop)
		err = r.hk.Unregister()
	})
	return err
}
