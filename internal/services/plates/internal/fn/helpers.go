package fn

func Map[T any, V any](items []T, selector func(T) V) []V {
	results := make([]V, 0, len(items))
	for _, item := range items {
		results = append(results, selector(item))
	}
	return results
}

func Filter[T any](items []T, keep func(T) bool) []T {
	results := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			results = append(results, item)
		}
	}
	return results
}
