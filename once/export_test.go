package once

// Waiting returns the number of callers blocked in Do behind a running fn.
func (f *Flag) Waiting() int {
	f.init()
	return f.c.Waiting()
}
