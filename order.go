package main

// orderModels sorts models so that every model referenced through a
// foreign key appears before its referrers. Depth-first with a shared
// visited set; the top level iterates all models so unreachable ones are
// still emitted. A cyclic foreign-key graph terminates (the visited set
// stops the recursion) but one edge of the cycle will come out in the
// wrong order; no cycle detection is attempted.
func orderModels(models []*Model) ([]*Model, error) {
	visited := make(map[*Model]bool)
	var ordered []*Model

	var visit func(*Model) error
	visit = func(m *Model) error {
		if visited[m] {
			return nil
		}
		visited[m] = true
		related, err := m.relatedModels()
		if err != nil {
			return err
		}
		for _, parent := range related {
			if err := visit(parent); err != nil {
				return err
			}
		}
		ordered = append(ordered, m)
		return nil
	}

	for _, m := range models {
		if err := visit(m); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
