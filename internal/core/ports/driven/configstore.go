package driven

// ConfigStore is a flat map of dotted keys ("chunking.size") to values.
// The typed getters never fail: a missing key or a value of another kind
// reads as the zero value, and GetInt and GetFloat accept either number
// kind.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool

	// Set and Delete persist before returning.
	Set(key string, value any) error
	Delete(key string) error

	// Keys is sorted.
	Keys() []string

	Save() error

	// Load discards in-memory values and rereads the backing file.
	Load() error

	Path() string
}
