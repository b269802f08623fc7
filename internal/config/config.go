// Package config предоставляет настройки приложения: JSON-файл
// предпочтений в домашнем каталоге плюс переопределения из окружения.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
)

// Значения по умолчанию. Используются при отсутствии или порче
// соответствующих полей в файле предпочтений.
const (
	DefaultDestLanguage        = "ja"
	DefaultCopyCombo           = "Ctrl+C"
	DefaultCopyPressCount      = 2
	DefaultStateDumpCombo      = "F8"
	DefaultStateDumpPressCount = 1
	DefaultDoublePressInterval = 250 * time.Millisecond
	DefaultMinTriggerInterval  = 150 * time.Millisecond
)

const preferencesFileName = ".cctrans_preferences.json"

// HotkeyPref - настройка одной горячей клавиши.
type HotkeyPref struct {
	Combo      string `json:"combo"`
	PressCount int    `json:"press_count"`
}

// Env - переопределения процесса из переменных окружения (.env
// подхватывается в main через godotenv).
type Env struct {
	Endpoint string        `env:"CCTRANS_ENDPOINT" envDefault:"https://translate.googleapis.com/translate_a/single"`
	Timeout  time.Duration `env:"CCTRANS_TIMEOUT" envDefault:"5s"`
	LogFile  string        `env:"CCTRANS_LOG_FILE"`
	Debug    bool          `env:"CCTRANS_DEBUG"`
	UILang   string        `env:"CCTRANS_LANG"`
}

// hotkeysData - сериализуемый блок hotkeys.
type hotkeysData struct {
	Copy                *HotkeyPref `json:"copy,omitempty"`
	StateDump           *HotkeyPref `json:"state_dump,omitempty"`
	DoublePressInterval float64     `json:"double_press_interval,omitempty"`
	MinTriggerInterval  float64     `json:"min_trigger_interval,omitempty"`
}

// prefsData - сериализуемый документ предпочтений.
type prefsData struct {
	DestLanguage  string      `json:"dest_language,omitempty"`
	Notifications *bool       `json:"notifications_enabled,omitempty"`
	Hotkeys       hotkeysData `json:"hotkeys"`
}

// Config хранит настройки приложения.
type Config struct {
	mu   sync.RWMutex
	path string

	dest                string
	notifications       bool
	copyHotkey          HotkeyPref
	stateDumpHotkey     HotkeyPref
	doublePressInterval time.Duration
	minTriggerInterval  time.Duration

	envCfg Env
}

// New создаёт конфигурацию, загружая файл предпочтений из домашнего
// каталога (или значения по умолчанию, если файла нет).
func New() *Config {
	path := ""
	if home, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(home, preferencesFileName)
	}
	return Load(path)
}

// Load создаёт конфигурацию с явным путём к файлу предпочтений.
// Пустой путь отключает сохранение.
func Load(path string) *Config {
	c := &Config{
		path:                path,
		dest:                DefaultDestLanguage,
		notifications:       true,
		copyHotkey:          HotkeyPref{Combo: DefaultCopyCombo, PressCount: DefaultCopyPressCount},
		stateDumpHotkey:     HotkeyPref{Combo: DefaultStateDumpCombo, PressCount: DefaultStateDumpPressCount},
		doublePressInterval: DefaultDoublePressInterval,
		minTriggerInterval:  DefaultMinTriggerInterval,
	}
	c.load()
	// Ошибка разбора окружения оставляет значения envDefault.
	_ = env.Parse(&c.envCfg)
	return c
}

// load подмешивает валидные поля файла поверх значений по умолчанию.
func (c *Config) load() {
	if c.path == "" {
		return
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return // Файла нет - работаем с defaults
	}
	var data prefsData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	if data.DestLanguage != "" {
		c.dest = data.DestLanguage
	}
	if data.Notifications != nil {
		c.notifications = *data.Notifications
	}
	mergeHotkey(&c.copyHotkey, data.Hotkeys.Copy, DefaultCopyPressCount)
	mergeHotkey(&c.stateDumpHotkey, data.Hotkeys.StateDump, DefaultStateDumpPressCount)
	if data.Hotkeys.DoublePressInterval > 0 {
		c.doublePressInterval = secondsToDuration(data.Hotkeys.DoublePressInterval)
	}
	if data.Hotkeys.MinTriggerInterval > 0 {
		c.minTriggerInterval = secondsToDuration(data.Hotkeys.MinTriggerInterval)
	}
}

func mergeHotkey(dst *HotkeyPref, src *HotkeyPref, defaultPress int) {
	if src == nil {
		return
	}
	if src.Combo != "" {
		dst.Combo = src.Combo
	}
	if src.PressCount >= 1 {
		dst.PressCount = src.PressCount
	} else {
		dst.PressCount = defaultPress
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// save записывает документ целиком. Ошибки записи не критичны и
// молча игнорируются, как и остальные сбои работы с предпочтениями.
func (c *Config) save() {
	if c.path == "" {
		return
	}
	notifications := c.notifications
	data := prefsData{
		DestLanguage:  c.dest,
		Notifications: &notifications,
		Hotkeys: hotkeysData{
			Copy:                &HotkeyPref{Combo: c.copyHotkey.Combo, PressCount: c.copyHotkey.PressCount},
			StateDump:           &HotkeyPref{Combo: c.stateDumpHotkey.Combo, PressCount: c.stateDumpHotkey.PressCount},
			DoublePressInterval: c.doublePressInterval.Seconds(),
			MinTriggerInterval:  c.minTriggerInterval.Seconds(),
		},
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path, raw, 0o644)
}

// DestLanguage возвращает сохранённый язык перевода.
func (c *Config) DestLanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dest
}

// SetDestLanguage сохраняет язык перевода в файл предпочтений.
func (c *Config) SetDestLanguage(dest string) {
	if dest == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dest = dest
	c.save()
}

// NotificationsEnabled возвращает настройку системных уведомлений.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// ToggleNotifications переключает уведомления, сохраняет настройку и
// возвращает новое значение.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = !c.notifications
	c.save()
	return c.notifications
}

// CopyHotkey возвращает настройку горячей клавиши копирования.
func (c *Config) CopyHotkey() HotkeyPref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyHotkey
}

// StateDumpHotkey возвращает настройку клавиши диагностики.
func (c *Config) StateDumpHotkey() HotkeyPref {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateDumpHotkey
}

// DoublePressInterval возвращает окно серии нажатий.
func (c *Config) DoublePressInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doublePressInterval
}

// MinTriggerInterval возвращает минимальный интервал между
// срабатываниями перевода.
func (c *Config) MinTriggerInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.minTriggerInterval
}

// Env возвращает переопределения из окружения.
func (c *Config) Env() Env {
	return c.envCfg
}
