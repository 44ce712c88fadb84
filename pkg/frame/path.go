package frame

// BuildPath renders an event stack into a root-first call path. Stacks
// arrive leaf first, the way profilers deliver them. Frames that cannot
// be named are dropped; skipped reports how many.
func (n *Namer) BuildPath(stack []Frame) (path []string, skipped int) {
	if len(stack) == 0 {
		return nil, 0
	}
	path = make([]string, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		name, ok := n.Name(stack[i])
		if !ok {
			skipped++
			continue
		}
		path = append(path, name)
	}
	return path, skipped
}
