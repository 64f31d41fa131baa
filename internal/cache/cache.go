// Package cache define un cache de bytes con TTL. Backends: memoria
// (patrickmn/go-cache) y Redis. Usado para conexiones externas pendientes
// (scoped a la sesión de sign-up) y contadores de rate limiting.
package cache

import "time"

type Cache interface {
	Get(key string) (value []byte, ok bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
