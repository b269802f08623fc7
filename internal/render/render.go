// Package render отображает результат перевода пользователю.
package render

import (
	"fmt"

	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"cctrans/internal/i18n"
)

// Renderer - приёмник результатов воркера. reposition сообщает,
// что окно стоит заново отцентрировать (true только для переводов,
// запущенных копированием); как им распорядиться - дело реализации.
type Renderer interface {
	Render(original, translated, detectedSource string, reposition bool)
}

// DialogRenderer показывает перевод в системном диалоге zenity.
type DialogRenderer struct {
	log *zap.SugaredLogger
}

// NewDialogRenderer создаёт рендерер диалогов.
func NewDialogRenderer(log *zap.SugaredLogger) *DialogRenderer {
	return &DialogRenderer{log: log}
}

// Render показывает диалог с оригиналом и переводом. Диалог zenity
// сам выбирает позицию, поэтому reposition здесь не используется.
func (d *DialogRenderer) Render(original, translated, detectedSource string, reposition bool) {
	message := fmt.Sprintf(
		"%s (%s):\n%s\n\n%s:\n%s",
		i18n.T("dialog_original"),
		i18n.LanguageName(detectedSource),
		original,
		i18n.T("dialog_translated"),
		translated,
	)
	if err := zenity.Info(message, zenity.Title(i18n.T("dialog_title"))); err != nil {
		d.log.Warnw("Не удалось показать диалог перевода", "error", err)
	}
}
