package audit

import (
	"fmt"
	"sync"
)

var (
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex
	enabled      bool
)

// Init installs w as the global audit writer. A nil w disables auditing.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}

	globalWriter = w
	enabled = true
	return nil
}

// InitFile installs a FileWriter for path. An empty path disables auditing.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}

	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}

	return Init(w)
}

// Close closes the global audit writer and disables auditing.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	enabled = false
	return err
}

// Enabled returns whether audit logging is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes event to the global writer. If it fails the calling operation
// must fail too.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	if err := w.Write(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// LogKeyGenerated records the outcome of one key generation. kid and kty may
// be empty; reason is only recorded for failures.
func LogKeyGenerated(algorithm, format, kid, kty string, success bool, reason string) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	ctx := Context{
		Algorithm: algorithm,
		Format:    format,
	}
	if !success {
		ctx.Reason = reason
	}

	event := NewEvent(EventKeyGenerated, result).
		WithObject(Object{
			Type:  "key",
			KeyID: kid,
			Kty:   kty,
		}).
		WithContext(ctx)

	return Log(event)
}
