package openpgpjs

import "sync"

// Worker is the delegated execution contract: it runs an operation in an
// isolated context and reports a result with the same shape and semantics as
// local execution.
type Worker interface {
	Delegate(operation string, args interface{}) (interface{}, error)
}

var (
	workerMu sync.RWMutex
	worker   Worker
)

// InitWorker registers the process-wide worker handle, replacing any
// previous one. Registering a nil handle fails.
func InitWorker(w Worker) bool {
	if w == nil {
		return false
	}
	workerMu.Lock()
	worker = w
	workerMu.Unlock()
	return true
}

// GetWorker returns the registered worker handle, or nil if none is
// registered.
func GetWorker() Worker {
	workerMu.RLock()
	defer workerMu.RUnlock()
	return worker
}

// DestroyWorker drops the registered worker handle. Operations after
// teardown execute locally again.
func DestroyWorker() {
	workerMu.Lock()
	worker = nil
	workerMu.Unlock()
}
