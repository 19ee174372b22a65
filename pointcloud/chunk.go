package pointcloud

// Range is a half-open [Start, End) index range into a point dataset.
type Range struct {
	Start, End int
}

// Len returns the number of points covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// ChunkRanges partitions count points into consecutive ranges of at most max
// points each, in original order. A dataset that fits under the cap yields
// exactly one range (including an empty dataset); otherwise every range holds
// max points except possibly the last. Returns nil if count is negative or
// max is not positive.
func ChunkRanges(count, max int) []Range {
	if count < 0 || max <= 0 {
		return nil
	}
	if count <= max {
		return []Range{{0, count}}
	}
	ranges := make([]Range, 0, (count+max-1)/max)
	for start := 0; start < count; start += max {
		end := start + max
		if end > count {
			end = count
		}
		ranges = append(ranges, Range{start, end})
	}
	return ranges
}
