package game

// KVStore is the persistence collaborator. A nil value from Get means the key is absent.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// Authenticator answers whether the current caller is authenticated as addr.
type Authenticator interface {
	RequireAuth(addr Address) error
}

// AuthFunc adapts a function to Authenticator.
type AuthFunc func(addr Address) error

func (f AuthFunc) RequireAuth(addr Address) error { return f(addr) }
