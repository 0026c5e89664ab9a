package schema

import "actiond"

// RunTargets returns the fully-qualified action names reached by every
// `run` step in a, including those nested inside fallback chains, for the
// loader's cross-namespace fallback-cycle heuristic (§4.2 semantic rule 4).
func RunTargets(a actiond.Action) []string {
	var out []string
	var walk func(steps []actiond.Step)
	walk = func(steps []actiond.Step) {
		for _, s := range steps {
			if s.Action == "run" {
				if target, ok := s.Args["action"].(string); ok {
					out = append(out, target)
				}
			}
			walk(s.Fallback)
		}
	}
	walk(a.Steps)
	return out
}
