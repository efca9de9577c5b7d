package grid

// probe is one candidate selector for a grid affordance. Different grid
// widget versions render their toolbars differently, so affordances are
// discovered through an ordered probe sequence rather than a single selector.
type probe struct {
	selector string
}

// probes builds a probe sequence from an ordered selector list.
func probes(selectors []string) []probe {
	ps := make([]probe, 0, len(selectors))
	for _, s := range selectors {
		ps = append(ps, probe{selector: s})
	}
	return ps
}

// firstMatch runs the probe sequence against root and returns the first
// probe whose selector matches at least one element. Probe order is the
// priority order; the search stops at the first hit.
func firstMatch(root Locator, ps []probe) (Locator, string, bool) {
	for _, p := range ps {
		candidate := root.Locator(p.selector)
		count, err := candidate.Count()
		if err != nil || count == 0 {
			continue
		}
		return candidate.First(), p.selector, true
	}
	return nil, "", false
}
