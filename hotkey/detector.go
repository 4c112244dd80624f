package hotkey

import "sync"

// Edge is a transition of the hotkey predicate.
type Edge int

const (
	Press Edge = iota + 1
	Release
)

func (e Edge) String() string {
	switch e {
	case Press:
		return "press"
	case Release:
		return "release"
	}
	return "none"
}

// Detector folds observer events into a KeyState and emits exactly one Press
// for every false→true transition of the preset predicate and one Release for
// every true→false transition.
type Detector struct {
	mu     sync.Mutex
	preset Preset
	state  KeyState
	active bool
	q      *edgeQueue
}

func NewDetector(p Preset) *Detector {
	if !p.Valid() {
		p = DefaultPreset
	}
	return &Detector{preset: p, q: newEdgeQueue()}
}

// Handle is the observer callback. It never blocks.
func (d *Detector) Handle(ev Event) {
	d.mu.Lock()
	d.state.Apply(ev)
	held := d.preset.Held(d.state)
	var edge Edge
	switch {
	case held && !d.active:
		d.active = true
		edge = Press
	case !held && d.active:
		d.active = false
		edge = Release
	}
	d.mu.Unlock()

	if edge != 0 {
		d.q.push(edge)
	}
}

// SetPreset switches the predicate. It is evaluated on the next event, so a
// combination that is already held does not fire until something changes.
func (d *Detector) SetPreset(p Preset) {
	d.mu.Lock()
	d.preset = p
	d.mu.Unlock()
}

func (d *Detector) Preset() Preset {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.preset
}

func (d *Detector) State() KeyState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detector) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Edges delivers press/release notifications in order. It is closed by Close.
func (d *Detector) Edges() <-chan Edge {
	return d.q.out
}

func (d *Detector) Close() {
	d.q.close()
}
