// Package notify предоставляет системные уведомления.
package notify

import (
	"github.com/gen2brain/beeep"

	"cctrans/internal/i18n"
)

const appName = "CCTrans"

// Notifier отправляет системные уведомления.
type Notifier struct {
	enabled bool
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Degraded сообщает, что приложение работает без горячих клавиш.
func (n *Notifier) Degraded(detail string) {
	n.notify(i18n.T("notify_degraded"), detail)
}

// ClipboardError сообщает о сбое чтения буфера обмена.
func (n *Notifier) ClipboardError(detail string) {
	n.notify(i18n.T("notify_clipboard"), detail)
}

// Info показывает информационное уведомление.
func (n *Notifier) Info(msg string) {
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	n.notify("", msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled {
		return
	}
	// Ошибки уведомлений не критичны - игнорируем
	if title != "" {
		_ = beeep.Notify(appName+": "+title, message, "")
	} else {
		_ = beeep.Notify(appName, message, "")
	}
}
