package fake

import (
	"github.com/mj1618/axsim/internal/ax"
	"github.com/mj1618/axsim/internal/model"
)

// Event describes notification n delivered for el to the observer named
// observer. The caller assigns Seq.
func (d *Desktop) Event(observer string, el ax.UIElement, n ax.Notification) model.Event {
	ev := model.Event{
		Observer:     observer,
		Notification: string(n),
		ElementID:    int(el.ID()),
		Ref:          d.Describe(el.ID()),
	}
	// Reads fail once the element is invalid; the event keeps what is known.
	if snap, err := el.Attributes(ax.AttrRole, ax.AttrTitle); err == nil {
		ev.Role = model.MapRole(stringOf(snap[ax.AttrRole]))
		ev.Title = stringOf(snap[ax.AttrTitle])
	}
	if pid, err := el.PID(); err == nil {
		ev.PID = int(pid)
	}
	return ev
}
