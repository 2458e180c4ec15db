package dialog

import "go.uber.org/zap"

// Notifier est la surface de notifications (toasts) de l'interface.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier écrit les notifications dans le logger global.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { zap.S().Infof("✅ %s", msg) }
func (LogNotifier) Error(msg string)   { zap.S().Errorf("❌ %s", msg) }
