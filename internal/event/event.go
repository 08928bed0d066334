package event

type Type string

const (
	TypeNotification Type = "table.notification"
	TypeViewOpened   Type = "view.opened"
	TypeViewClosed   Type = "view.closed"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	ViewID    string `json:"view_id,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"-"` // Session owner the event belongs to
}

// Filter selects the events a subscriber receives. A nil filter receives
// everything.
type Filter func(e Event) bool

func ForActor(actorID string) Filter {
	return func(e Event) bool {
		return e.ActorID == actorID
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe(filter Filter) (<-chan Event, func()) // Returns channel and unsubscribe function
}
