// Package enum keeps the known values of string enum types, so that a string
// coming from storage or a request can be checked before it is trusted.
package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	registryMutex sync.RWMutex
	registry      = map[reflect.Type]map[string]any{}
)

// New registers value as a known value of its type and returns it.
func New[T ~string](value T) T {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	t := reflect.TypeOf(value)
	if _, ok := registry[t]; !ok {
		registry[t] = map[string]any{}
	}
	registry[t][string(value)] = value

	return value
}

// ToEnum returns the registered value of T equal to s.
func ToEnum[T ~string](s string) (T, error) {
	var zero T

	registryMutex.RLock()
	defer registryMutex.RUnlock()

	values, ok := registry[reflect.TypeOf(zero)]
	if !ok {
		return zero, fmt.Errorf("enum %T has no values", zero)
	}

	v, ok := values[s]
	if !ok {
		return zero, fmt.Errorf("invalid value %q for enum %T", s, zero)
	}

	return v.(T), nil
}

// IsValid reports whether value was registered.
func IsValid[T ~string](value T) bool {
	_, err := ToEnum[T](string(value))
	return err == nil
}
