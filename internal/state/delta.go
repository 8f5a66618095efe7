package state

// Delta is one ordered state mutation. Paths follow the state tree
// literally, e.g. "/world/cells/L1:0,0:6,6".
type Delta struct {
	Op    string `json:"op"` // set, add, del, inc
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Recorder collects the deltas of one turn in mutation order. Deltas are
// recorded alongside each mutation, never derived by diffing.
type Recorder struct {
	Deltas []Delta
}

// Set records a set mutation.
func (r *Recorder) Set(path string, value any) {
	r.Deltas = append(r.Deltas, Delta{Op: "set", Path: path, Value: value})
}

// Add records an add mutation.
func (r *Recorder) Add(path string, value any) {
	r.Deltas = append(r.Deltas, Delta{Op: "add", Path: path, Value: value})
}

// Del records a delete mutation.
func (r *Recorder) Del(path string) {
	r.Deltas = append(r.Deltas, Delta{Op: "del", Path: path})
}

// Inc records a counter increment.
func (r *Recorder) Inc(path string) {
	r.Deltas = append(r.Deltas, Delta{Op: "inc", Path: path})
}

// Len returns the number of recorded deltas.
func (r *Recorder) Len() int {
	return len(r.Deltas)
}
