// Package translate определяет интерфейс переводчика и клиент
// неофициального веб-API Google Translate.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Result - результат перевода.
type Result struct {
	// Text - переведённый текст.
	Text string
	// DetectedSource - определённый язык оригинала, пустая строка
	// если сервис его не сообщил.
	DetectedSource string
}

// Error - ошибка перевода. Единственный вид ошибок, который доходит
// до пользователя: воркер показывает сообщение вместо перевода.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Translator переводит текст. src - язык оригинала, пустая строка
// означает автоопределение.
type Translator interface {
	Translate(ctx context.Context, text, src, dest string) (Result, error)
}

// GoogleClient - минимальный клиент эндпоинта translate_a/single.
// Сетевой таймаут клиент обеспечивает сам; вызывающий код дополнительных
// таймаутов не навешивает.
type GoogleClient struct {
	endpoint string
	httpc    *http.Client
}

// NewGoogleClient создаёт клиент. Пустой endpoint или нулевой таймаут
// заменяются значениями по умолчанию.
func NewGoogleClient(endpoint string, timeout time.Duration) *GoogleClient {
	if endpoint == "" {
		endpoint = "https://translate.googleapis.com/translate_a/single"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleClient{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Translate выполняет запрос перевода. Любой сбой (сеть, статус,
// неожиданный формат ответа) возвращается как *Error.
func (g *GoogleClient) Translate(ctx context.Context, text, src, dest string) (Result, error) {
	if text == "" {
		return Result{}, &Error{Message: "нечего переводить: пустой текст"}
	}
	if src == "" {
		src = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("dt", "t")
	params.Set("sl", src)
	params.Set("tl", dest)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, &Error{Message: "не удалось сформировать запрос", Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return Result{}, &Error{Message: "сетевая ошибка при обращении к Google Translate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, &Error{Message: fmt.Sprintf("Google Translate вернул статус %d", resp.StatusCode)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &Error{Message: "не удалось прочитать ответ", Err: err}
	}

	return parseResponse(payload)
}

// parseResponse разбирает ответ вида
// [[["перевод","оригинал",...],...],null,"en",...].
func parseResponse(payload []byte) (Result, error) {
	var data []any
	if err := json.Unmarshal(payload, &data); err != nil {
		return Result{}, &Error{Message: "некорректный ответ Google Translate", Err: err}
	}
	if len(data) == 0 {
		return Result{}, &Error{Message: "неожиданная структура ответа перевода"}
	}

	segments, ok := data[0].([]any)
	if !ok {
		return Result{}, &Error{Message: "неожиданная структура ответа перевода"}
	}

	translated := ""
	for _, seg := range segments {
		part, ok := seg.([]any)
		if !ok || len(part) == 0 {
			continue
		}
		if chunk, ok := part[0].(string); ok {
			translated += chunk
		}
	}

	detected := ""
	if len(data) > 2 {
		if lang, ok := data[2].(string); ok {
			detected = lang
		}
	}

	return Result{Text: translated, DetectedSource: detected}, nil
}
