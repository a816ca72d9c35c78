package storage

// Store is the local persistence boundary: a synchronous string-key to
// JSON-string map with no transactions and no locking. It stands in for the
// per-browser local storage of the original product, so implementations must
// degrade rather than fail: a missing or unreadable key reads as absent.
type Store interface {
	// Get returns the value for key. A read fault reads as absence.
	Get(key string) (string, bool)

	// Set writes the value for key. Callers treat a write fault as a logged
	// no-op; nothing above the order store ever sees it.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Clear wipes the whole store. Only the logout path uses it.
	Clear() error
}
