package app

import "sync"

// Request - один запрос на перевод.
type Request struct {
	Text       string
	Src        string
	Dest       string
	Reposition bool
}

// requestQueue - неограниченная FIFO-очередь запросов. Производители
// кладут запросы, не блокируясь, единственный воркер забирает их по
// одному. После Close очередь отдаёт остаток и завершает потребителя.
type requestQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Request
	closed bool
}

func newRequestQueue() *requestQueue {
	q := &requestQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push добавляет запрос. Запрос в закрытую очередь отбрасывается.
func (q *requestQueue) Push(r Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, r)
	q.cond.Signal()
}

// Pop блокируется до появления запроса либо закрытия очереди.
// Второе значение false означает, что очередь закрыта и пуста.
func (q *requestQueue) Pop() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Request{}, false
	}
	r := q.items[0]
	q.items = q.items[1:]
	return r, true
}

// Len возвращает текущую глубину очереди.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close закрывает очередь и будит ожидающих. Идемпотентен.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
