package nepsereport

// Group is one bucket produced by Fold.
type Group[K comparable, A any] struct {
	Key K
	Acc A
}

// Fold groups items by key and reduces each group with step, starting from
// init(key). Groups come back in order of first appearance.
func Fold[K comparable, T any, A any](items []T, key func(T) K, init func(K) A, step func(A, T) A) []Group[K, A] {
	index := map[K]int{}
	var groups []Group[K, A]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, A]{Key: k, Acc: init(k)})
		}
		groups[i].Acc = step(groups[i].Acc, item)
	}
	return groups
}
