package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/dpendulum/internal/dynamo"
)

// Default is the stepper used when none is named.
const Default = "rk45"

var registry = map[string]func() dynamo.Stepper{
	"euler": func() dynamo.Stepper { return NewEuler() },
	"rk4":   func() dynamo.Stepper { return NewRK4() },
	"rk45":  func() dynamo.Stepper { return NewRK45() },
}

// New returns a fresh stepper by name. An empty name selects Default.
func New(name string) (dynamo.Stepper, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Names lists the registered steppers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
