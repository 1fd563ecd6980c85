package cart

import "time"

// StorageLogEvent describes one persistence attempt. Save failures are
// swallowed by the container, so this log is the only place they surface.
type StorageLogEvent struct {
	Op       string
	Key      string
	Duration time.Duration
	Err      error
}

// StorageLogger records persistence events.
type StorageLogger interface {
	LogStorage(StorageLogEvent)
}

// StorageLoggerFunc adapts a function to StorageLogger.
type StorageLoggerFunc func(StorageLogEvent)

// LogStorage implements StorageLogger.
func (f StorageLoggerFunc) LogStorage(event StorageLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopStorageLogger struct{}

func (noopStorageLogger) LogStorage(StorageLogEvent) {}
