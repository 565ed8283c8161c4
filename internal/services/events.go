package services

// Broadcast event names pushed to connected clients.
const (
	EventNewOrder     = "newOrder"
	EventUpdateOrder  = "updateOrder"
	EventNewPlugin    = "newPlugin"
	EventUpdatePlugin = "updatePlugin"
	EventDeletePlugin = "deletePlugin"
	EventNewUser      = "newUser"
)

// Notifier is the injected push-channel capability. Publishing is
// fire-and-forget: no acknowledgement, no ordering guarantee relative to
// database writes, and the workflow never depends on it succeeding.
type Notifier interface {
	Publish(event string, payload interface{})
}
