package hotkey

import "sync"

// FakeObserver is an Observer driven by test code.
type FakeObserver struct {
	mu       sync.Mutex
	handle   func(Event)
	StartErr error
	stopped  bool

	RetargetErr error
	retargets   []Preset
}

func NewFake() *FakeObserver {
	return &FakeObserver{}
}

func (f *FakeObserver) Start(handle func(Event)) error {
	if f.StartErr != nil {
		return f.StartErr
	}
	f.mu.Lock()
	f.handle = handle
	f.mu.Unlock()
	return nil
}

func (f *FakeObserver) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.handle = nil
	f.mu.Unlock()
}

func (f *FakeObserver) Supports(Preset) error { return nil }

// Retarget records p so tests can see which presets the app asked for.
func (f *FakeObserver) Retarget(p Preset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RetargetErr != nil {
		return f.RetargetErr
	}
	f.retargets = append(f.retargets, p)
	return nil
}

func (f *FakeObserver) Retargets() []Preset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Preset(nil), f.retargets...)
}

func (f *FakeObserver) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// Send delivers events as if they came from the keyboard.
func (f *FakeObserver) Send(evs ...Event) {
	f.mu.Lock()
	h := f.handle
	f.mu.Unlock()
	if h == nil {
		return
	}
	for _, ev := range evs {
		h(ev)
	}
}

func (f *FakeObserver) SimKeydown(p Preset) { f.Send(p.PressEvents()...) }
func (f *FakeObserver) SimKeyup(p Preset)   { f.Send(p.ReleaseEvents()...) }
