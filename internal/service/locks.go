package service

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// keyedLocks — набор мьютексов по UUID-ключу. Сериализует критические
// секции в пределах одного ключа: для допуска ключ — корт (проверка
// пересечений и вставка под одним мьютексом), для переходов статуса —
// бронь (read-modify-write не перемежается). Разные ключи блокируются
// независимо.
type keyedLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{m: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *keyedLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.m[id]
	if !ok {
		kl = &sync.Mutex{}
		l.m[id] = kl
	}
	return kl
}

// Lock захватывает мьютексы перечисленных ключей и возвращает функцию
// освобождения. Дубликаты схлопываются, порядок захвата стабильный
// (сортировка по ID), что исключает взаимную блокировку пакетов.
func (l *keyedLocks) Lock(ids ...uuid.UUID) func() {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	uniq := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Slice(uniq, func(i, j int) bool {
		return uniq[i].String() < uniq[j].String()
	})

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		kl := l.get(id)
		kl.Lock()
		held = append(held, kl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
