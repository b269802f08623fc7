// CCTrans - фоновая утилита перевода скопированного текста.
//
// Живёт в системном трее, слушает двойное Ctrl+C, переводит содержимое
// буфера обмена через Google Translate и показывает результат в диалоге.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cctrans/internal/app"
	"cctrans/internal/binding"
	"cctrans/internal/capture"
	"cctrans/internal/clipboard"
	"cctrans/internal/config"
	"cctrans/internal/hotkey"
	"cctrans/internal/i18n"
	"cctrans/internal/lockfile"
	"cctrans/internal/notify"
	"cctrans/internal/render"
	"cctrans/internal/translate"
	"cctrans/internal/tray"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	// .env подхватывается до чтения окружения; отсутствие файла не ошибка.
	_ = godotenv.Load()

	cfg := config.New()

	// Язык интерфейса можно переопределить из окружения.
	if lang := cfg.Env().UILang; lang != "" {
		i18n.SetLanguage(i18n.Language(lang))
	}

	dest := flag.String("dest", cfg.DestLanguage(), "язык перевода (код ISO, например ja)")
	src := flag.String("src", "", "исходный язык; пусто - автоопределение")
	flag.Parse()

	logger := newLogger(cfg.Env())
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("CCTrans запускается", "version", Version)

	lock, err := lockfile.Acquire("cctrans")
	if err != nil {
		if errors.Is(err, lockfile.ErrAlreadyRunning) {
			_ = zenity.Info(i18n.T("dialog_already"), zenity.Title(i18n.T("dialog_title")))
			os.Exit(0)
		}
		sugar.Fatalw("Не удалось захватить лок-файл", "error", err)
	}
	defer lock.Release()

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(func() {
		run(cfg, sugar, *src, *dest)
	})
}

func run(cfg *config.Config, sugar *zap.SugaredLogger, src, dest string) {
	envCfg := cfg.Env()

	a := app.New(app.Options{
		Config:    cfg,
		Logger:    sugar,
		Clipboard: clipboard.NewSystemReader(),
		Renderer:  render.NewDialogRenderer(sugar),
		Notifier:  notify.New(cfg.NotificationsEnabled()),
		TranslatorFactory: func() translate.Translator {
			return translate.NewGoogleClient(envCfg.Endpoint, envCfg.Timeout)
		},
		CaptureFactory: func(bindings []binding.Binding) app.CaptureService {
			return capture.New(hotkey.NewBackend(), bindings, sugar, capture.Options{})
		},
	})
	a.SetSourceLanguage(src)
	a.SetDestLanguage(dest)

	tr := tray.New(tray.Callbacks{
		OnToggleLanguage:      a.ToggleLanguage,
		OnNotificationsToggle: a.ToggleNotifications,
		OnReboot:              a.Reboot,
		OnQuit:                a.Stop,
	}, dest, cfg.NotificationsEnabled())

	// Жизненный цикл приложения крутится рядом с треем; когда цикл
	// завершается, трей закрывается и Run возвращается.
	tr.Run(func() {
		go func() {
			a.Run()
			tr.Quit()
		}()
	})
}

// newLogger собирает логгер с учётом окружения: CCTRANS_DEBUG включает
// debug-уровень, CCTRANS_LOG_FILE добавляет файл к stderr.
func newLogger(envCfg config.Env) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if !envCfg.Debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if envCfg.LogFile != "" {
		zcfg.OutputPaths = []string{"stderr", envCfg.LogFile}
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatalf("Не удалось создать логгер: %v", err)
	}
	return logger
}
