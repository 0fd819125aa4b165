package index

// PostingList holds the ordinals of the documents containing a term, in
// ascending order. Ordinals are assigned in document insertion order, so the
// list is also in insertion order.
type PostingList []int

// TermEntry pairs a term with its postings for snapshotting.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// search reports whether ord is in the sorted list, and where it would be
// inserted otherwise.
func (p PostingList) search(ord int) (int, bool) {
	lo, hi := 0, len(p)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if p[mid] < ord {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(p) && p[lo] == ord
}
