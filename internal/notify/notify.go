// Package notify is the fire-and-forget user notice boundary. Notices are
// advisory only: a dropped notice never fails the operation that raised it.
package notify

import "github.com/devnazarchuk/sneakers-shop/pkg/logger"

// Notifier delivers a short user-facing notice.
type Notifier interface {
	Notify(message string, keyvals ...interface{})
}

// LogNotifier writes notices to the application log. It is the only
// delivery channel; a UI or push channel would implement the same interface.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (n *LogNotifier) Notify(message string, keyvals ...interface{}) {
	n.logger.Warn("User notice: "+message, keyvals...)
}
