package service

// Notifier announces collection changes to the real-time layer, which
// re-runs the affected subscription queries and pushes fresh snapshots
// to connected sessions.
type Notifier interface {
	MessagesChanged(roomID string)
	RoomsChanged()
	UsersChanged()
	AnnouncementsChanged()
	SubteamsChanged()
	NotificationsChanged()
}

// nopNotifier stands in until the hub is attached.
type nopNotifier struct{}

func (nopNotifier) MessagesChanged(string) {}

func (nopNotifier) RoomsChanged() {}

func (nopNotifier) UsersChanged() {}

func (nopNotifier) AnnouncementsChanged() {}

func (nopNotifier) SubteamsChanged() {}

func (nopNotifier) NotificationsChanged() {}
