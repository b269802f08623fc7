// Package clipboard предоставляет чтение системного буфера обмена.
package clipboard

import (
	"fmt"
	"sync"

	xclipboard "golang.design/x/clipboard"
)

// Reader читает текст из буфера обмена.
type Reader interface {
	// Paste возвращает текущий текст буфера. Пустой буфер - это
	// пустая строка, а не ошибка.
	Paste() (string, error)
}

// SystemReader - Reader поверх golang.design/x/clipboard.
type SystemReader struct {
	once    sync.Once
	initErr error
}

// NewSystemReader создаёт читатель системного буфера. Инициализация
// откладывается до первого Paste: на системах без буфера (headless)
// ошибка проявится при использовании, а не при старте.
func NewSystemReader() *SystemReader {
	return &SystemReader{}
}

// Paste читает текстовое содержимое буфера обмена.
func (r *SystemReader) Paste() (string, error) {
	r.once.Do(func() {
		r.initErr = xclipboard.Init()
	})
	if r.initErr != nil {
		return "", fmt.Errorf("буфер обмена недоступен: %w", r.initErr)
	}
	return string(xclipboard.Read(xclipboard.FmtText)), nil
}
