// Package access implementa la resolución de providers requeridos: ante un
// acceso denegado, busca qué combinación de providers aún no vinculados le
// daría acceso al usuario al recurso pedido.
package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/socialsignin/socialguard/internal/metrics"
	"github.com/socialsignin/socialguard/internal/observability/logger"
	"github.com/socialsignin/socialguard/internal/security/authn"
	"github.com/socialsignin/socialguard/internal/security/registry"
)

// ErrNoOracle indica un deployment roto: no hay PolicyOracle configurado.
// Se detecta al construir el resolver, nunca por request.
var ErrNoOracle = errors.New("access: no policy oracle configured")

const defaultParallelism = 4

// Resolver orquesta generador de combinaciones + augmenter + policy oracle.
type Resolver struct {
	oracle      PolicyOracle
	registry    *registry.Registry
	factory     *authn.Factory
	parallelism int
}

// Option configura el Resolver.
type Option func(*Resolver)

// WithParallelism fija cuántas evaluaciones del oracle corren en paralelo.
// Valores < 1 fuerzan evaluación secuencial.
func WithParallelism(n int) Option {
	return func(r *Resolver) {
		if n < 1 {
			n = 1
		}
		r.parallelism = n
	}
}

// NewResolver construye el resolver. Un oracle nil es un error fatal de
// configuración (ErrNoOracle), igual que registry o factory nil.
func NewResolver(oracle PolicyOracle, reg *registry.Registry, factory *authn.Factory, opts ...Option) (*Resolver, error) {
	if oracle == nil {
		return nil, ErrNoOracle
	}
	if reg == nil || factory == nil {
		return nil, errors.New("access: registry and factory are required")
	}
	r := &Resolver{
		oracle:      oracle,
		registry:    reg,
		factory:     factory,
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RequiredProviders decide qué combinación de providers no vinculados
// desbloquearía (contextPath, uri, method) para la autenticación actual.
//
// Retorna la primera combinación satisfactoria en el orden de enumeración de
// Combinations (la mínima), o nil si ninguna combinación ayuda (denegación
// real). Un resultado nil con error nil significa que no hay redirect posible.
//
// Las combinaciones se evalúan en paralelo acotado; el desempate es siempre
// por índice de enumeración (gana el mínimo), no por orden de finalización,
// así que el resultado observable es idéntico al recorrido secuencial.
// Un error del oracle aborta la resolución completa: sin respuesta para una
// combinación no se puede afirmar denegación.
func (r *Resolver) RequiredProviders(ctx context.Context, a authn.Authentication, contextPath, uri, method string) ([]string, error) {
	start := time.Now()
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Resolver.RequiredProviders"))

	unconnected := r.registry.Unconnected(a)
	combos := Combinations(unconnected)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	var mu sync.Mutex
	best := len(combos) // centinela: ninguna combinación satisfactoria aún

	for i, combo := range combos {
		i, combo := i, combo
		mu.Lock()
		skip := i >= best
		mu.Unlock()
		if skip {
			// Una combinación posterior ya no puede ganar: el índice mínimo
			// registrado es autoritativo.
			continue
		}
		g.Go(func() error {
			mu.Lock()
			skip := i >= best
			mu.Unlock()
			if skip {
				return nil
			}
			hypothetical := r.factory.WithProviders(a, combo)
			metrics.OracleEvaluationsTotal.Inc()
			allowed, err := r.oracle.IsAllowed(gctx, contextPath, uri, method, hypothetical)
			if err != nil {
				return err
			}
			if allowed {
				mu.Lock()
				if i < best {
					best = i
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("policy evaluation: %w", err)
	}
	metrics.ResolutionDuration.Observe(float64(time.Since(start).Milliseconds()))

	if best == len(combos) {
		// Ninguna combinación desbloquea el recurso: denegación real.
		metrics.ResolutionsTotal.WithLabelValues("denied").Inc()
		return nil, nil
	}

	required := combos[best]
	if len(required) == 0 {
		// El oracle permite el request tal cual. No debería pasar (el request
		// real ya fue denegado); inconsistencia no fatal, sin redirect.
		log.Warn("policy oracle allows the request without additional providers",
			logger.Path(uri), logger.Method(method))
		metrics.ResolutionsTotal.WithLabelValues("already_allowed").Inc()
		return nil, nil
	}

	metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
	log.Debug("resolved required providers",
		logger.Providers(required), logger.Path(uri), logger.Method(method))

	out := make([]string, len(required))
	copy(out, required)
	return out, nil
}

// NextProvider elige a qué provider redirigir primero de un conjunto
// requerido no vacío. Determinístico: el ID lexicográficamente menor.
func NextProvider(required []string) string {
	if len(required) == 0 {
		return ""
	}
	next := required[0]
	for _, id := range required[1:] {
		if id < next {
			next = id
		}
	}
	return next
}
