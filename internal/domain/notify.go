package domain

// Notifier is the external notification sink. Fire-and-forget: failures are
// logged by the implementation, never retried, and never block the engine.
type Notifier interface {
	Send(title, body, tag string)
}
