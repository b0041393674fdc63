package prefetch

// Three volume-record generations are known. Every generation shares the same
// 36 byte fixed header; they differ only in the size of the unknown trailing
// region that has to be skipped to reach the next record.
const (
	VersionWin8  = 23
	VersionWin81 = 26
	VersionWin10 = 30
)

// volumeTrailerSizes is a closed table of known format versions. An explicit
// lookup (rather than an inline conditional per call site) makes a new,
// unhandled version an observable condition instead of a silent fallthrough.
var volumeTrailerSizes = map[uint32]int{
	VersionWin8:  68,
	VersionWin81: 68,
	VersionWin10: 60,
}

// TrailerSize returns the length in bytes of the unknown region following a
// volume record's fixed fields, and whether the version is a known
// generation.
func TrailerSize(version uint32) (int, bool) {
	size, ok := volumeTrailerSizes[version]
	return size, ok
}
