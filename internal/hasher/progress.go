package hasher

// Progress receives live updates during a run. The total grows as scans
// report children; observers must not assume it is fixed at start.
type Progress interface {
	// SetTotal reports the current known amount of work.
	SetTotal(total int64)
	// Describe reports the target of the most recent scan or hash.
	Describe(message string)
	// Increment records one completed hash.
	Increment()
	// Done signals the end of the run.
	Done()
}

type nopProgress struct{}

func (nopProgress) SetTotal(int64)  {}
func (nopProgress) Describe(string) {}
func (nopProgress) Increment()      {}
func (nopProgress) Done()           {}
