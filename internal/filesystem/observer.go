package filesystem

// Observer records filesystem and watcher metrics. Implementations are
// provided by the metrics package to break the import cycle between
// filesystem and metrics.
type Observer interface {
	// ObserveOperation records duration and error status for a vault operation.
	// volume is the vault label ("vault" or "storage").
	// operation is one of "stat", "read", "write", "readdir", "open".
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	// Retry metrics for NFS resilience.
	// retryOp is the retried operation: "stat", "open", "read".
	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)

	// Watcher metrics.
	ObserveWatcherEvent(eventType string)
	ObserveWatcherError()
	SetWatchedDirectories(n int)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is skipped (safe for tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	defaultObserver = o
}

// nopObserver discards everything.
type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, float64, error) {}
func (nopObserver) ObserveRetryAttempt(string, string)              {}
func (nopObserver) ObserveRetrySuccess(string, string)              {}
func (nopObserver) ObserveRetryFailure(string, string)              {}
func (nopObserver) ObserveRetryDuration(string, string, float64)    {}
func (nopObserver) ObserveStaleError(string, string)                {}
func (nopObserver) ObserveWatcherEvent(string)                      {}
func (nopObserver) ObserveWatcherError()                            {}
func (nopObserver) SetWatchedDirectories(int)                       {}

// observe is a nil-safe accessor for the package-level observer.
func observe() Observer {
	if defaultObserver == nil {
		return nopObserver{}
	}
	return defaultObserver
}
