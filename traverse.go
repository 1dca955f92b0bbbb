package modelmap

import "iter"

// Discover walks the source graph depth-first in pre-order and yields every
// populated field at every nesting level. The direct fields of an instance
// are yielded before any recursion; model-valued fields are yielded once as a
// whole-object discovery and then descended into; the elements of model lists
// are descended into one by one (index not tracked, same depth increment).
//
// No field is skipped because a same-named one was already seen: duplicates
// across branches are deliberately all yielded, and picking among them is the
// Matcher's job.
//
// The sequence is finite and one-shot. Callers that need another pass call
// Discover again.
func Discover(src Instance) iter.Seq[Discovery] {
	return func(yield func(Discovery) bool) {
		walk(src, nil, 0, yield)
	}
}

func walk(src Instance, trail []string, depth int, yield func(Discovery) bool) bool {
	fields := src.Fields()
	for _, fv := range fields {
		d := Discovery{
			Name:  fv.Name,
			Value: fv.Value,
			Path:  appendTrail(trail, fv.Name),
			Depth: depth,
		}
		if !yield(d) {
			return false
		}
	}
	for _, fv := range fields {
		switch fv.Kind {
		case KindModel:
			child, ok := fv.Value.(Instance)
			if !ok || child == nil {
				continue
			}
			if !walk(child, appendTrail(trail, fv.Name), depth+1, yield) {
				return false
			}
		case KindModelList:
			items, ok := fv.Value.([]Instance)
			if !ok {
				continue
			}
			for _, it := range items {
				if it == nil {
					continue
				}
				if !walk(it, appendTrail(trail, fv.Name), depth+1, yield) {
					return false
				}
			}
		}
	}
	return true
}

// appendTrail copies so yielded paths stay valid after the walk moves on.
func appendTrail(trail []string, seg string) []string {
	out := make([]string, len(trail)+1)
	copy(out, trail)
	out[len(trail)] = seg
	return out
}
