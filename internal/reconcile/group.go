package reconcile

import "sort"

// OrderGroup is every fill sharing one permanent order id, partitioned
// into chronologically ordered time buckets. Fills with an identical
// execution timestamp land in the same bucket: the first bucket is the
// opening transaction, the second (if any) the closing one.
type OrderGroup struct {
	PermID  int64
	Buckets [][]Fill
}

// groupFills partitions an unordered fill collection by PermID, then
// sub-partitions each group by distinct timestamp. Groups come back
// sorted by earliest execution so repeated runs are deterministic.
func groupFills(fills []Fill) []OrderGroup {
	byOrder := make(map[int64][]Fill)
	for _, f := range fills {
		byOrder[f.PermID] = append(byOrder[f.PermID], f)
	}

	groups := make([]OrderGroup, 0, len(byOrder))
	for permID, fs := range byOrder {
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].Time.Before(fs[j].Time) })

		var buckets [][]Fill
		for _, f := range fs {
			n := len(buckets)
			if n > 0 && f.Time.Equal(buckets[n-1][0].Time) {
				buckets[n-1] = append(buckets[n-1], f)
				continue
			}
			buckets = append(buckets, []Fill{f})
		}
		groups = append(groups, OrderGroup{PermID: permID, Buckets: buckets})
	}

	sort.Slice(groups, func(i, j int) bool {
		ti := groups[i].Buckets[0][0].Time
		tj := groups[j].Buckets[0][0].Time
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return groups[i].PermID < groups[j].PermID
	})
	return groups
}
