package capture

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"cctrans/internal/binding"
)

type fakeKey struct {
	ch chan struct{}

	mu           sync.Mutex
	unregistered bool
}

func (k *fakeKey) Keydown() <-chan struct{} { return k.ch }

func (k *fakeKey) Unregister() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.unregistered = true
	return nil
}

func (k *fakeKey) isUnregistered() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.unregistered
}

type fakeBackend struct {
	mu          sync.Mutex
	keys        map[string][]*fakeKey
	registers   int
	hook        func(b binding.Binding) error // вызывается до регистрации
	disruptions chan Disruption
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		keys:        make(map[string][]*fakeKey),
		disruptions: make(chan Disruption, 1),
	}
}

func (f *fakeBackend) Register(b binding.Binding) (RegisteredKey, error) {
	f.mu.Lock()
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(b); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	key := &fakeKey{ch: make(chan struct{}, 4)}
	f.keys[b.Name] = append(f.keys[b.Name], key)
	return key, nil
}

func (f *fakeBackend) Disruptions() <-chan Disruption { return f.disruptions }

func (f *fakeBackend) setHook(hook func(b binding.Binding) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
}

func (f *fakeBackend) registerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers
}

// press эмулирует нажатие по последней регистрации действия.
func (f *fakeBackend) press(t *testing.T, name string) {
	t.Helper()
	f.mu.Lock()
	keys := f.keys[name]
	f.mu.Unlock()
	if len(keys) == 0 {
		t.Fatalf("нет регистраций для %q", name)
	}
	keys[len(keys)-1].ch <- struct{}{}
}

func (f *fakeBackend) lastKey(t *testing.T, name string) *fakeKey {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := f.keys[name]
	if len(keys) == 0 {
		t.Fatalf("нет регистраций для %q", name)
	}
	return keys[len(keys)-1]
}

func mustParse(t *testing.T, name, combo string) binding.Binding {
	t.Helper()
	b, err := binding.Parse(name, combo, false)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func testOptions() Options {
	return Options{
		StartTimeout:     time.Second,
		StopTimeout:      time.Second,
		CrashBackoff:     10 * time.Millisecond,
		WatchdogInterval: time.Hour,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("не дождались: %s", what)
}

func expectEvent(t *testing.T, events <-chan Event, name string) Event {
	t.Helper()
	select {
	case ev := <-events:
		if ev.Name != name {
			t.Fatalf("событие %q, ожидалось %q", ev.Name, name)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("событие %q не пришло", name)
		return Event{}
	}
}

func TestStartReachesListening(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{
		mustParse(t, "copy", "Ctrl+C"),
		mustParse(t, "state_dump", "F8"),
	}, zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	if st := svc.State(); st != StateListening {
		t.Fatalf("состояние = %v", st)
	}
	if got := svc.Describe(); len(got) != 2 {
		t.Fatalf("Describe = %v", got)
	}
}

func TestPartialRegistrationAllowed(t *testing.T) {
	backend := newFakeBackend()
	backend.setHook(func(b binding.Binding) error {
		if b.Name == "state_dump" {
			return errors.New("занято другим приложением")
		}
		return nil
	})
	svc := New(backend, []binding.Binding{
		mustParse(t, "copy", "Ctrl+C"),
		mustParse(t, "state_dump", "F8"),
	}, zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	got := svc.Describe()
	if len(got) != 1 || got[0] != "copy: Ctrl+C" {
		t.Fatalf("Describe = %v", got)
	}
}

func TestEventsAreEmitted(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	before := time.Now()
	backend.press(t, "copy")
	ev := expectEvent(t, svc.Events(), "copy")
	if ev.Time.Before(before) {
		t.Error("метка времени события в прошлом")
	}
}

func TestStartTimeout(t *testing.T) {
	backend := newFakeBackend()
	block := make(chan struct{})
	backend.setHook(func(b binding.Binding) error {
		<-block
		return nil
	})
	opts := testOptions()
	opts.StartTimeout = 30 * time.Millisecond
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), opts)

	err := svc.Start()
	if !errors.Is(err, ErrStartupTimeout) {
		t.Fatalf("ошибка = %v, ожидался ErrStartupTimeout", err)
	}
	close(block)
	svc.Stop()
}

func TestStartFailsFastWhenNothingRegisters(t *testing.T) {
	backend := newFakeBackend()
	backend.setHook(func(b binding.Binding) error {
		return errors.New("занято другим приложением")
	})
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())

	begin := time.Now()
	err := svc.Start()
	if !errors.Is(err, ErrStartFailed) {
		t.Fatalf("ошибка = %v, ожидался ErrStartFailed", err)
	}
	// Ошибка инициализации не должна ждать весь StartTimeout.
	if elapsed := time.Since(begin); elapsed > 500*time.Millisecond {
		t.Errorf("Start вернулся через %v", elapsed)
	}
	svc.Stop()
}

func TestReregisterRecreatesRegistrations(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	oldKey := backend.lastKey(t, "copy")

	svc.RequestReregister()
	waitFor(t, "повторная регистрация", func() bool { return backend.registerCount() == 2 })
	waitFor(t, "снятие старой регистрации", oldKey.isUnregistered)
	waitFor(t, "возврат в listening", func() bool { return svc.State() == StateListening })

	// Новая регистрация продолжает доставлять события.
	backend.press(t, "copy")
	expectEvent(t, svc.Events(), "copy")
}

func TestDisruptionTriggersReregistration(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	backend.disruptions <- DisruptionPowerResume
	waitFor(t, "перерегистрация после сигнала ОС", func() bool { return backend.registerCount() == 2 })
}

func TestReregisterFailureStopsListening(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	backend.setHook(func(b binding.Binding) error {
		return errors.New("регистрация сломана")
	})
	svc.RequestReregister()

	// Ошибка инициализации при перерегистрации не перезапускается:
	// служба остаётся без прослушивания до следующего Start.
	waitFor(t, "остановка после неудачной перерегистрации", func() bool { return svc.State() == StateIdle })

	// Повторный Start с исправным бэкендом снова работает.
	backend.setHook(nil)
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "возврат в listening", func() bool { return svc.State() == StateListening })
}

func TestCrashRecovery(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}

	// Вторая инициализация (перерегистрация) падает паникой,
	// третья проходит: цикл должен самовосстановиться.
	var calls int
	var callsMu sync.Mutex
	backend.setHook(func(b binding.Binding) error {
		callsMu.Lock()
		defer callsMu.Unlock()
		calls++
		if calls == 1 {
			panic("эмуляция аварии бэкенда")
		}
		return nil
	})
	svc.RequestReregister()

	waitFor(t, "восстановление после аварии", func() bool {
		return svc.State() == StateListening && backend.registerCount() >= 2
	})
	backend.press(t, "copy")
	expectEvent(t, svc.Events(), "copy")
}

func TestStopUnregistersAndIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	key := backend.lastKey(t, "copy")

	svc.Stop()
	if !key.isUnregistered() {
		t.Error("регистрация не снята после Stop")
	}
	if st := svc.State(); st != StateIdle {
		t.Errorf("состояние = %v", st)
	}
	svc.Stop() // повторный Stop безопасен
}

func TestStopBeforeStart(t *testing.T) {
	svc := New(newFakeBackend(), nil, zap.NewNop().Sugar(), testOptions())
	svc.Stop() // no-op
}

func TestEventOverflowDropsWithoutBlocking(t *testing.T) {
	backend := newFakeBackend()
	opts := testOptions()
	opts.EventBuffer = 2
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), opts)
	defer svc.Stop()

	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	// Никто не читает канал событий: лишние нажатия должны
	// отбрасываться, а цикл - оставаться живым.
	for i := 0; i < 10; i++ {
		backend.press(t, "copy")
	}
	// Даём конвейеру прокачать все нажатия, прежде чем читать канал.
	time.Sleep(100 * time.Millisecond)
	if st := svc.State(); st != StateListening {
		t.Fatalf("состояние = %v", st)
	}

	for i := 0; i < 2; i++ {
		expectEvent(t, svc.Events(), "copy")
	}
	select {
	case ev := <-svc.Events():
		t.Fatalf("лишнее событие %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRestartAfterStop(t *testing.T) {
	backend := newFakeBackend()
	svc := New(backend, []binding.Binding{mustParse(t, "copy", "Ctrl+C")},
		zap.NewNop().Sugar(), testOptions())

	for i := 0; i < 3; i++ {
		if err := svc.Start(); err != nil {
			t.Fatalf("итерация %d: %v", i, err)
		}
		backend.press(t, "copy")
		expectEvent(t, svc.Events(), "copy")
		svc.Stop()
	}
	if got, want := backend.registerCount(), 3; got != want {
		t.Errorf("регистраций %d, ожидалось %d", got, want)
	}
}
