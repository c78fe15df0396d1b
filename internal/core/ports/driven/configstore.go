package driven

// ConfigStore holds the persisted settings as flat dot-notation keys such as
// "validation.allowed_schemes" or "limits.max_rows".
//
// Typed getters return the zero value when a key is missing or holds another
// type; callers that need to tell the two apart use Get.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value and persists the configuration immediately.
	Set(key string, value any) error

	// Keys lists the keys currently set, sorted.
	Keys() []string

	// Path returns where the configuration is persisted.
	Path() string
}
