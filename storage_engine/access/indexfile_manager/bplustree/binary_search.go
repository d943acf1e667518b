package bplus

// lower bound over the slots [lo, hi): first index whose key is >= target
func lowerBound(lo, hi int, keyAt func(int) []byte, target []byte, cmp Comparator) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keyAt(mid), target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upper bound over the slots [lo, hi): first index whose key is > target
func upperBound(lo, hi int, keyAt func(int) []byte, target []byte, cmp Comparator) int {
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keyAt(mid), target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
