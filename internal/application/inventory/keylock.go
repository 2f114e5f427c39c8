package inventory

import (
	"context"
	"sort"
	"sync"
)

// StockKey clave de serialización de un par (bodega, producto).
func StockKey(warehouseID, productID string) string {
	return warehouseID + ":" + productID
}

// KeyedLocker serializa dentro del proceso las operaciones sobre una misma clave.
// Claves distintas no compiten entre sí. La serialización entre instancias la da el
// bloqueo de BD que toma el TxRunner; esto solo evita encolar conexiones en la BD.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewKeyedLocker construye el locker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyLock)}
}

// Lock adquiere todas las claves en orden lexicográfico (sin interbloqueos entre
// traslados cruzados) y devuelve la función que las libera. Si ctx se cancela mientras
// espera, libera lo ya adquirido y devuelve ctx.Err().
func (l *KeyedLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = uniqueSorted(keys)
	acquired := make([]string, 0, len(keys))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			l.unlock(acquired[i])
		}
	}
	for _, k := range keys {
		kl := l.ref(k)
		select {
		case kl.ch <- struct{}{}:
			acquired = append(acquired, k)
		case <-ctx.Done():
			l.unref(k)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func (l *KeyedLocker) ref(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[key]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *KeyedLocker) unlock(key string) {
	l.mu.Lock()
	kl := l.locks[key]
	l.mu.Unlock()
	<-kl.ch
	l.unref(key)
}

// active número de claves con referencias vivas (para tests).
func (l *KeyedLocker) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
