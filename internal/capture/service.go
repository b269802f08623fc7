package capture

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"cctrans/internal/binding"
)

// State - состояние службы захвата.
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateListening
	StateReregister
	StateCrashed
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateListening:
		return "listening"
	case StateReregister:
		return "reregister"
	case StateCrashed:
		return "crashed"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Options - настройки службы. Нулевые поля заменяются значениями
// по умолчанию.
type Options struct {
	EventBuffer      int
	StartTimeout     time.Duration
	StopTimeout      time.Duration
	CrashBackoff     time.Duration
	WatchdogInterval time.Duration
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.EventBuffer <= 0 {
		o.EventBuffer = 64
	}
	if o.StartTimeout <= 0 {
		o.StartTimeout = 5 * time.Second
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = 5 * time.Second
	}
	if o.CrashBackoff <= 0 {
		o.CrashBackoff = time.Second
	}
	if o.WatchdogInterval <= 0 {
		o.WatchdogInterval = 5 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type registration struct {
	b   binding.Binding
	key RegisteredKey
}

// Service владеет регистрациями, циклом прослушивания и его
// восстановлением. События публикуются в ограниченный канал; при
// переполнении событие отбрасывается с записью в лог, но поток
// бэкенда никогда не блокируется.
type Service struct {
	backend  Backend
	bindings []binding.Binding
	log      *zap.SugaredLogger
	opts     Options

	events chan Event
	state  atomic.Int32

	mu          sync.Mutex
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	readyCh     chan struct{}
	reregCh     chan struct{}
	triggers    chan string
	forwardStop chan struct{}
	registered  []registration
	active      []string
}

// New создаёт службу захвата. Привязки фиксируются на всё время жизни
// службы; канал событий создаётся один раз и переживает перезапуски.
func New(backend Backend, bindings []binding.Binding, log *zap.SugaredLogger, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		backend:  backend,
		bindings: bindings,
		log:      log,
		opts:     opts,
		events:   make(chan Event, opts.EventBuffer),
		reregCh:  make(chan struct{}, 1),
	}
}

// Events возвращает канал срабатываний. Канал не закрывается.
func (s *Service) Events() <-chan Event {
	return s.events
}

// State возвращает текущее состояние машины.
func (s *Service) State() State {
	return State(s.state.Load())
}

func (s *Service) setState(st State) {
	s.state.Store(int32(st))
}

// Start запускает поток захвата и блокирует вызывающего до выхода
// в состояние прослушивания либо до таймаута (ErrStartupTimeout).
// Повторный Start работающей службы - no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.readyCh = make(chan struct{})
	s.triggers = make(chan string, 16)
	ready := s.readyCh
	done := s.doneCh
	// Устаревший запрос перерегистрации от прошлого запуска не нужен.
	select {
	case <-s.reregCh:
	default:
	}
	s.mu.Unlock()

	go s.run()

	select {
	case <-ready:
		return nil
	case <-done:
		// Цикл завершился, не дойдя до прослушивания; таймаут ждать
		// незачем.
		select {
		case <-ready:
			return nil
		default:
		}
		return ErrStartFailed
	case <-time.After(s.opts.StartTimeout):
		return ErrStartupTimeout
	}
}

// Stop сигнализирует циклу о завершении, ждёт его с ограниченным
// таймаутом и безусловно освобождает регистрации. Идемпотентен.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(s.opts.StopTimeout):
		s.log.Warnw("Поток захвата не завершился вовремя, регистрации снимаются принудительно")
	}
	s.teardown()
}

// RequestReregister планирует перерегистрацию привязок в цикле
// прослушивания. Запрос не выполняется в потоке вызывающего - это
// исключает повторный вход из обработчиков ОС.
func (s *Service) RequestReregister() {
	select {
	case s.reregCh <- struct{}{}:
	default: // запрос уже в очереди
	}
}

// Describe возвращает отображаемые строки фактически
// зарегистрированных привязок (не исходно запрошенных).
func (s *Service) Describe() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.active))
	copy(out, s.active)
	return out
}

func (s *Service) run() {
	defer func() {
		s.setState(StateIdle)
		s.mu.Lock()
		s.running = false
		done := s.doneCh
		s.mu.Unlock()
		close(done)
	}()

	var ready sync.Once
	for {
		crashed := s.cycle(&ready)
		if !crashed {
			return
		}
		// Авария цикла: пауза и новая попытка, пока нас не остановили.
		select {
		case <-s.stopCh:
			return
		case <-time.After(s.opts.CrashBackoff):
		}
	}
}

// cycle выполняет одну итерацию инициализация-прослушивание.
// Возвращает true, если итерация оборвалась паникой и цикл нужно
// перезапустить после паузы.
func (s *Service) cycle(ready *sync.Once) (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.setState(StateCrashed)
			s.log.Errorw("Цикл захвата аварийно завершился", "panic", r)
			s.teardown()
			crashed = true
		}
	}()

	s.setState(StateInitializing)
	if err := s.initialize(); err != nil {
		s.log.Errorw("Не удалось инициализировать захват", "error", err)
		s.teardown()
		return false
	}
	s.setState(StateListening)
	ready.Do(func() {
		s.mu.Lock()
		close(s.readyCh)
		s.mu.Unlock()
	})
	defer s.teardown()

	watchdog := time.NewTicker(s.opts.WatchdogInterval)
	defer watchdog.Stop()
	disruptions := s.backend.Disruptions()

	for {
		select {
		case <-s.stopCh:
			s.setState(StateShuttingDown)
			return false

		case name := <-s.triggers:
			s.emit(name)

		case d := <-disruptions:
			s.log.Infow("Получен сигнал ОС, планируем перерегистрацию", "signal", d.String())
			s.RequestReregister()

		case <-s.reregCh:
			s.setState(StateReregister)
			s.log.Infow("Перерегистрация горячих клавиш")
			s.teardown()
			s.setState(StateInitializing)
			if err := s.initialize(); err != nil {
				// Служба остаётся без прослушивания до следующего Start.
				s.log.Errorw("Перерегистрация не удалась, захват остановлен", "error", err)
				return false
			}
			s.setState(StateListening)

		case <-watchdog.C:
			// Сторожевой тик - только диагностика живости,
			// восстановлением занимается обработка аварий.
			s.log.Debugw("Сторожевой тик захвата",
				"state", s.State().String(),
				"bindings", len(s.Describe()),
			)
		}
	}
}

// initialize регистрирует привязки текущего цикла. Привязка, которую
// бэкенд не принял, пропускается с записью в лог - частичный успех
// допустим. Ошибка возвращается, только если не удалось
// зарегистрировать ни одной из запрошенных привязок.
func (s *Service) initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forwardStop = make(chan struct{})
	var regs []registration
	var active []string
	for _, b := range s.bindings {
		key, err := s.backend.Register(b)
		if err != nil {
			s.log.Errorw("Не удалось зарегистрировать горячую клавишу",
				"name", b.Name, "combo", b.Display, "error", err)
			continue
		}
		regs = append(regs, registration{b: b, key: key})
		active = append(active, b.Name+": "+b.Display)
		go s.forward(b.Name, key.Keydown(), s.triggers, s.forwardStop)
		s.log.Infow("Зарегистрирована горячая клавиша", "name", b.Name, "combo", b.Display)
	}
	s.registered = regs
	s.active = active

	if len(s.bindings) > 0 && len(regs) == 0 {
		return fmt.Errorf("ни одна из %d привязок не зарегистрирована", len(s.bindings))
	}
	return nil
}

// forward перекачивает нажатия одной привязки в общий канал цикла.
func (s *Service) forward(name string, keydown <-chan struct{}, triggers chan<- string, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			select {
			case triggers <- name:
			case <-stop:
				return
			}
		}
	}
}

// emit публикует событие, никогда не блокируясь: переполненный канал
// означает отброшенное событие и предупреждение в логе.
func (s *Service) emit(name string) {
	ev := Event{Name: name, Time: s.opts.Now()}
	select {
	case s.events <- ev:
	default:
		s.log.Warnw("Канал событий переполнен, событие отброшено", "name", name)
	}
}

// teardown снимает все регистрации текущего цикла. Идемпотентен,
// вызывается и из цикла, и из Stop.
func (s *Service) teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forwardStop != nil {
		close(s.forwardStop)
		s.forwardStop = nil
	}
	for _, r := range s.registered {
		if err := r.key.Unregister(); err != nil {
			s.log.Warnw("Ошибка снятия регистрации", "name", r.b.Name, "error", err)
		}
	}
	s.registered = nil
	s.active = nil
}
