// Package lockfile не даёт запустить второй экземпляр приложения:
// глобальные горячие клавиши может держать только один процесс.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrAlreadyRunning означает, что лок-файл держит другой процесс.
var ErrAlreadyRunning = errors.New("приложение уже запущено")

// Lock - захваченный лок-файл экземпляра.
type Lock struct {
	path string
	file *os.File
}

// Acquire пытается эксклюзивно заблокировать <tmp>/<name>.lock.
// Возвращает ErrAlreadyRunning, если файл уже держит живой процесс.
func Acquire(name string) (*Lock, error) {
	path := filepath.Join(os.TempDir(), name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("открытие лок-файла: %w", err)
	}
	if err := lock(f); err != nil {
		f.Close()
		if errors.Is(err, errWouldBlock) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("блокировка %s: %w", path, err)
	}

	// PID пишется только для диагностики, проверяется сама блокировка.
	f.Truncate(0)
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Sync()

	return &Lock{path: path, file: f}, nil
}

// Release снимает блокировку и удаляет файл. Идемпотентен.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	unlock(l.file)
	l.file.Close()
	l.file = nil
	os.Remove(l.path)
}
