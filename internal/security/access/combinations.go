package access

import (
	"math/bits"
	"sort"
)

// Combinations genera el power set de items: cada subconjunto exactamente una
// vez, incluido el vacío, en un orden determinístico y reproducible.
//
// Orden: cardinalidad ascendente; empates por valor de bitmask sobre el orden
// de la slice de entrada. Garantiza que el subconjunto vacío va primero, el
// completo va último y todo subconjunto de un elemento precede a cualquiera
// más grande. La semántica "gana la primera combinación que satisface" del
// resolver depende de este orden.
//
// Para n elementos retorna exactamente 2^n subconjuntos. Sin efectos
// secundarios; la entrada no se modifica.
func Combinations[T any](items []T) [][]T {
	n := len(items)
	total := 1 << n

	masks := make([]uint, total)
	for m := range masks {
		masks[m] = uint(m)
	}
	sort.SliceStable(masks, func(i, j int) bool {
		bi, bj := bits.OnesCount(masks[i]), bits.OnesCount(masks[j])
		if bi != bj {
			return bi < bj
		}
		return masks[i] < masks[j]
	})

	out := make([][]T, 0, total)
	for _, m := range masks {
		sub := make([]T, 0, bits.OnesCount(m))
		for i := 0; i < n; i++ {
			if m&(1<<uint(i)) != 0 {
				sub = append(sub, items[i])
			}
		}
		out = append(out, sub)
	}
	return out
}
