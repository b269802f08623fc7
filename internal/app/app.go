// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"cctrans/internal/binding"
	"cctrans/internal/capture"
	"cctrans/internal/clipboard"
	"cctrans/internal/config"
	"cctrans/internal/debounce"
	"cctrans/internal/i18n"
	"cctrans/internal/notify"
	"cctrans/internal/render"
	"cctrans/internal/translate"
)

// languageSequence - круг языков назначения для смены направления,
// когда исходный язык не задан явно.
var languageSequence = []string{"ja", "en"}

// CaptureService - контракт службы захвата горячих клавиш.
type CaptureService interface {
	Start() error
	Stop()
	Events() <-chan capture.Event
	Describe() []string
}

// Options - зависимости приложения.
type Options struct {
	Config            *config.Config
	Logger            *zap.SugaredLogger
	Clipboard         clipboard.Reader
	Renderer          render.Renderer
	Notifier          *notify.Notifier
	TranslatorFactory func() translate.Translator
	// CaptureFactory получает привязки, разобранные из конфигурации.
	CaptureFactory func(bindings []binding.Binding) CaptureService
	Now            func() time.Time
}

// App связывает захват горячих клавиш, буфер обмена, очередь запросов
// и переводчик в один жизненный цикл.
type App struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	clip     clipboard.Reader
	renderer render.Renderer
	notifier *notify.Notifier

	capture CaptureService
	queue   *requestQueue

	copyDet *debounce.Detector
	dumpDet *debounce.Detector

	// translatorMu защищает ленивое создание и сброс переводчика.
	// Создание выполняется под замком, поэтому Reboot дожидается
	// завершения создания, начатого воркером.
	translatorMu      sync.Mutex
	translator        translate.Translator
	translatorFactory func() translate.Translator

	mu            sync.Mutex
	src           string
	dest          string
	langSeq       []string
	lastOriginal  string
	lastTrigger   time.Time
	restart       bool
	quitRequested bool
	stopCh        chan struct{}

	quit     chan struct{}
	quitOnce sync.Once

	dispatcherAlive atomic.Bool
	workerAlive     atomic.Bool
}

// New собирает приложение из зависимостей. Привязки клавиш читаются
// из конфигурации; некорректная комбинация пропускается с записью в
// лог, приложение продолжает работу с остальными.
func New(opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &App{
		cfg:               opts.Config,
		log:               opts.Logger,
		clip:              opts.Clipboard,
		renderer:          opts.Renderer,
		notifier:          opts.Notifier,
		queue:             newRequestQueue(),
		translatorFactory: opts.TranslatorFactory,
		quit:              make(chan struct{}),
		dest:              opts.Config.DestLanguage(),
		langSeq:           append([]string(nil), languageSequence...),
	}

	interval := a.cfg.DoublePressInterval()
	a.copyDet = debounce.New(a.cfg.CopyHotkey().PressCount, interval, opts.Now)
	a.dumpDet = debounce.New(a.cfg.StateDumpHotkey().PressCount, interval, opts.Now)

	a.capture = opts.CaptureFactory(a.parseBindings())
	return a
}

func (a *App) parseBindings() []binding.Binding {
	specs := []struct {
		name        string
		combo       string
		allowRepeat bool
	}{
		{"copy", a.cfg.CopyHotkey().Combo, false},
		{"state_dump", a.cfg.StateDumpHotkey().Combo, true},
	}
	var out []binding.Binding
	for _, s := range specs {
		b, err := binding.Parse(s.name, s.combo, s.allowRepeat)
		if err != nil {
			a.log.Errorw("Некорректная комбинация клавиш",
				"name", s.name, "combo", s.combo, "error", err)
			continue
		}
		out = append(out, b)
	}
	return out
}

// Run крутит жизненный цикл до запроса завершения. Reboot останавливает
// захват и начинает новую итерацию; недоступность горячих клавиш не
// фатальна - приложение продолжает работу в ограниченном режиме.
func (a *App) Run() {
	for {
		a.mu.Lock()
		if a.quitRequested {
			a.mu.Unlock()
			break
		}
		stop := make(chan struct{})
		a.stopCh = stop
		a.mu.Unlock()

		a.ensureWorkers()

		if err := a.capture.Start(); err != nil {
			a.log.Errorw("Горячие клавиши недоступны, работаем без них", "error", err)
			a.notifier.Degraded(err.Error())
		} else {
			a.log.Infow("Горячие клавиши активны", "bindings", a.capture.Describe())
			a.notifier.Info(i18n.T("notify_ready"))
		}

		<-stop
		a.capture.Stop()

		a.mu.Lock()
		restart := a.restart && !a.quitRequested
		a.restart = false
		a.stopCh = nil
		a.mu.Unlock()
		if !restart {
			break
		}
		a.log.Infow("Перезапуск жизненного цикла")
	}

	a.quitOnce.Do(func() { close(a.quit) })
	a.queue.Close()
}

// Stop завершает приложение: текущая итерация цикла прерывается,
// перезапуск не выполняется.
func (a *App) Stop() {
	a.mu.Lock()
	a.quitRequested = true
	a.closeStopLocked()
	a.mu.Unlock()
}

// Reboot сбрасывает переводчик и перезапускает итерацию жизненного
// цикла. Сброс дожидается создания переводчика, идущего в воркере.
func (a *App) Reboot() {
	a.resetTranslator()
	a.mu.Lock()
	a.restart = true
	a.closeStopLocked()
	a.mu.Unlock()
}

func (a *App) closeStopLocked() {
	if a.stopCh == nil {
		return
	}
	select {
	case <-a.stopCh:
	default:
		close(a.stopCh)
	}
}

// ensureWorkers поднимает фоновые потоки, если они ещё не работают
// или завершились на прошлой итерации.
func (a *App) ensureWorkers() {
	if a.dispatcherAlive.CompareAndSwap(false, true) {
		go func() {
			defer a.dispatcherAlive.Store(false)
			a.dispatch()
		}()
	}
	if a.workerAlive.CompareAndSwap(false, true) {
		go func() {
			defer a.workerAlive.Store(false)
			a.work()
		}()
	}
}

// dispatch читает события захвата и превращает их в запросы перевода.
// Поток живёт сквозь перезапуски: канал событий службы захвата
// переживает её Stop/Start.
func (a *App) dispatch() {
	events := a.capture.Events()
	for {
		select {
		case <-a.quit:
			return
		case ev := <-events:
			a.route(ev)
		}
	}
}

func (a *App) route(ev capture.Event) {
	switch ev.Name {
	case "copy":
		a.handleCopy(ev)
	case "state_dump":
		a.handleStateDump(ev)
	default:
		a.log.Warnw("Событие неизвестного действия отброшено", "name", ev.Name)
	}
}

func (a *App) handleCopy(ev capture.Event) {
	if !a.copyDet.Register(ev.Time) {
		return
	}

	a.mu.Lock()
	if !a.lastTrigger.IsZero() && ev.Time.Sub(a.lastTrigger) < a.cfg.MinTriggerInterval() {
		a.mu.Unlock()
		a.log.Debugw("Срабатывание слишком близко к предыдущему, пропущено")
		return
	}
	a.lastTrigger = ev.Time
	src, dest := a.src, a.dest
	a.mu.Unlock()

	text, err := a.clip.Paste()
	if err != nil {
		a.log.Errorw("Ошибка чтения буфера обмена", "error", err)
		a.notifier.ClipboardError(err.Error())
		// Серия нажатий обнуляется, чтобы следующая попытка
		// начиналась заново.
		a.copyDet.Reset()
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return // Пустой буфер молча игнорируется
	}
	a.queue.Push(Request{Text: text, Src: src, Dest: dest, Reposition: true})
}

func (a *App) handleStateDump(ev capture.Event) {
	if !a.dumpDet.Register(ev.Time) {
		return
	}
	a.mu.Lock()
	src, dest := a.src, a.dest
	last := a.lastTrigger
	restart := a.restart
	a.mu.Unlock()

	a.log.Infow("Диагностический снимок состояния",
		"bindings", a.capture.Describe(),
		"queue", a.queue.Len(),
		"src", src,
		"dest", dest,
		"last_trigger", last,
		"restart", restart,
	)
}

// work забирает запросы из очереди по одному и переводит их.
func (a *App) work() {
	for {
		req, ok := a.queue.Pop()
		if !ok {
			return
		}
		a.process(req)
	}
}

func (a *App) process(req Request) {
	a.mu.Lock()
	a.lastOriginal = req.Text
	a.mu.Unlock()

	tr := a.translatorHandle()
	res, err := tr.Translate(context.Background(), req.Text, req.Src, req.Dest)
	if err != nil {
		msg := err.Error()
		var terr *translate.Error
		if errors.As(err, &terr) {
			msg = terr.Message
		}
		a.log.Errorw("Ошибка перевода", "error", err)
		a.renderer.Render(req.Text, "Error during translation: "+msg, req.Src, req.Reposition)
		return
	}
	a.renderer.Render(req.Text, res.Text, res.DetectedSource, req.Reposition)
}

// translatorHandle лениво создаёт переводчик под замком и возвращает
// ссылку. Сам перевод выполняется вне замка.
func (a *App) translatorHandle() translate.Translator {
	a.translatorMu.Lock()
	defer a.translatorMu.Unlock()
	if a.translator == nil {
		a.translator = a.translatorFactory()
		a.log.Infow("Создан переводчик")
	}
	return a.translator
}

func (a *App) resetTranslator() {
	a.translatorMu.Lock()
	a.translator = nil
	a.translatorMu.Unlock()
	a.log.Infow("Переводчик сброшен")
}

// ToggleLanguage меняет направление перевода: при заданном исходном
// языке направление разворачивается, иначе язык назначения идёт по
// кругу языков. Новый язык назначения сохраняется, а последний
// оригинал переводится заново без перепозиционирования. Возвращает
// новый язык назначения.
func (a *App) ToggleLanguage() string {
	a.mu.Lock()
	if a.src != "" {
		a.src, a.dest = a.dest, a.src
	} else {
		a.dest = a.nextLanguageLocked(a.dest)
	}
	src, dest := a.src, a.dest
	last := a.lastOriginal
	a.mu.Unlock()

	a.cfg.SetDestLanguage(dest)
	a.log.Infow("Направление перевода изменено", "src", src, "dest", dest)
	a.retranslate(last, src, dest)
	return dest
}

func (a *App) nextLanguageLocked(dest string) string {
	for i, l := range a.langSeq {
		if l == dest {
			return a.langSeq[(i+1)%len(a.langSeq)]
		}
	}
	return a.langSeq[0]
}

// retranslate ставит последний оригинал на повторный перевод в новом
// направлении, без перепозиционирования окна. Пока ничего не
// переводилось, смена языка очередь не трогает.
func (a *App) retranslate(last, src, dest string) {
	if last == "" {
		return
	}
	a.queue.Push(Request{Text: last, Src: src, Dest: dest, Reposition: false})
}

// SetSourceLanguage задаёт исходный язык (пустое значение -
// автоопределение) и переводит последний оригинал заново.
func (a *App) SetSourceLanguage(src string) {
	a.mu.Lock()
	a.src = src
	dest := a.dest
	last := a.lastOriginal
	a.mu.Unlock()

	a.log.Infow("Исходный язык изменён", "src", src)
	a.retranslate(last, src, dest)
}

// SetDestLanguage задаёт и сохраняет язык назначения, добавляет его в
// круг переключения и переводит последний оригинал заново. Пустое
// значение игнорируется.
func (a *App) SetDestLanguage(dest string) {
	if dest == "" {
		return
	}
	a.mu.Lock()
	a.dest = dest
	if !containsLanguage(a.langSeq, dest) {
		a.langSeq = append(a.langSeq, dest)
	}
	src := a.src
	last := a.lastOriginal
	a.mu.Unlock()

	a.cfg.SetDestLanguage(dest)
	a.log.Infow("Язык назначения изменён", "dest", dest)
	a.retranslate(last, src, dest)
}

// ToggleNotifications переключает системные уведомления, сохраняет
// настройку и возвращает новое значение.
func (a *App) ToggleNotifications() bool {
	enabled := a.cfg.ToggleNotifications()
	a.notifier.SetEnabled(enabled)
	return enabled
}

func containsLanguage(seq []string, lang string) bool {
	for _, l := range seq {
		if l == lang {
			return true
		}
	}
	return false
}

// Languages возвращает текущее направление перевода.
func (a *App) Languages() (src, dest string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src, a.dest
}
