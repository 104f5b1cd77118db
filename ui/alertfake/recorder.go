package alertfake

import (
	"sync"

	"github.com/jrsteele09/go-signin-client/ui"
)

var _ ui.Alerter = (*Recorder)(nil)

type Alert struct {
	Title   string
	Message string
}

// Recorder keeps every alert it is shown.
type Recorder struct {
	lock   sync.Mutex
	alerts []Alert
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Alert(title, message string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.alerts = append(r.alerts, Alert{Title: title, Message: message})
}

func (r *Recorder) Alerts() []Alert {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Alert(nil), r.alerts...)
}

// Last returns the most recent alert, or the zero Alert if none were shown.
func (r *Recorder) Last() Alert {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.alerts) == 0 {
		return Alert{}
	}
	return r.alerts[len(r.alerts)-1]
}

func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.alerts = nil
}
