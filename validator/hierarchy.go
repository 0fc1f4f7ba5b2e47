package validator

// Default derived-from edges, keyed by base type, transitively closed.
// Application types join the hierarchy through the Options overlays,
// which are closed on demand instead.
var defaultDerivedFrom = map[string]map[string]bool{
	"summarized_experiment": {
		"ranged_summarized_experiment": true,
		"single_cell_experiment":       true,
		"spatial_experiment":           true,
	},
	"ranged_summarized_experiment": {
		"single_cell_experiment": true,
		"spatial_experiment":     true,
	},
	"single_cell_experiment": {
		"spatial_experiment": true,
	},
}

// Default interface membership, keyed by interface name
var defaultInterfaces = map[string]map[string]bool{
	"DATA_FRAME":            {"data_frame": true},
	"SIMPLE_LIST":           {"simple_list": true},
	"SUMMARIZED_EXPERIMENT": {"summarized_experiment": true},
	"RANGES":                {"genomic_ranges": true, "genomic_ranges_list": true},
}

// DerivedFrom reports whether type t is base itself or (transitively)
// derived from it, in the default hierarchy unioned with any overlay in
// opts. Overlay edges are walked as a graph with a visited set, so
// overlays that are not pre-closed, or even accidentally cyclic, still
// terminate.
func DerivedFrom(t, base string, opts *Options) bool {
	if t == base {
		return true
	}
	opts = ensure(opts)

	visited := map[string]bool{base: true}
	queue := []string{base}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edges := range []map[string]map[string]bool{defaultDerivedFrom, opts.CustomDerivedFrom} {
			for derived := range edges[cur] {
				if derived == t {
					return true
				}
				if !visited[derived] {
					visited[derived] = true
					queue = append(queue, derived)
				}
			}
		}
	}
	return false
}

// SatisfiesInterface reports whether type t satisfies the named
// abstract contract: either as a direct member of the interface's type
// set, or by derivation from a direct member.
func SatisfiesInterface(t, iface string, opts *Options) bool {
	opts = ensure(opts)
	for _, tables := range []map[string]map[string]bool{defaultInterfaces, opts.CustomInterfaces} {
		for member := range tables[iface] {
			if DerivedFrom(t, member, opts) {
				return true
			}
		}
	}
	return false
}
