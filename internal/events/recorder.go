package events

// Emitted is a single recorded Emit call.
type Emitted struct {
	Name    string
	Payload string
}

// Recorder records events and reports for test assertions.
type Recorder struct {
	Events  []Emitted
	Reports []Report
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records the event.
func (r *Recorder) Emit(name, payload string) {
	r.Events = append(r.Events, Emitted{Name: name, Payload: payload})
}

// Report records the report.
func (r *Recorder) Report(rep Report) {
	r.Reports = append(r.Reports, rep)
}

// Named returns the recorded events with the given name, in order.
func (r *Recorder) Named(name string) []Emitted {
	var out []Emitted
	for _, e := range r.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears recorded events and reports.
func (r *Recorder) Reset() {
	r.Events = nil
	r.Reports = nil
}
