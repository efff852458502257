package capture

import (
	"math"
	"sort"

	"github.com/ayusman/handviz/internal/detector"
)

// DefaultMatchDistance is the largest palm movement between two frames, in
// normalized image units, that still counts as the same hand.
const DefaultMatchDistance = 0.2

// idTracker keeps hand identities stable across frames by matching each new
// palm position to the nearest palm of the previous frame.
type idTracker struct {
	maxDist float64
	next    int64
	prev    []trackedPalm
}

type trackedPalm struct {
	id   int64
	palm detector.Point3D
}

func newIDTracker(maxDist float64) *idTracker {
	if maxDist <= 0 {
		maxDist = DefaultMatchDistance
	}
	return &idTracker{maxDist: maxDist, next: 1}
}

// assign returns an ID for each palm, reusing IDs of nearby palms from the
// previous call and allocating new ones for the rest.
func (t *idTracker) assign(palms []detector.Point3D) []int64 {
	type pair struct {
		cur, prev int
		dist      float64
	}

	var pairs []pair
	for i, p := range palms {
		for j, q := range t.prev {
			d := math.Hypot(p.X-q.palm.X, p.Y-q.palm.Y)
			if d <= t.maxDist {
				pairs = append(pairs, pair{cur: i, prev: j, dist: d})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].dist < pairs[b].dist })

	ids := make([]int64, len(palms))
	taken := make([]bool, len(t.prev))
	for _, p := range pairs {
		if ids[p.cur] != 0 || taken[p.prev] {
			continue
		}
		ids[p.cur] = t.prev[p.prev].id
		taken[p.prev] = true
	}

	next := make([]trackedPalm, len(palms))
	for i, p := range palms {
		if ids[i] == 0 {
			ids[i] = t.next
			t.next++
		}
		next[i] = trackedPalm{id: ids[i], palm: p}
	}
	t.prev = next

	return ids
}
