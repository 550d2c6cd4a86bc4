package executor

import (
	"fmt"
	"sort"
	"sync"
)

// Func is a candidate function. Only its running time matters.
type Func func(n int)

// Candidate identifies a registered function.
type Candidate struct {
	Name string `json:"name"`
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Func)
)

// Register adds fn under name. It panics on an empty name, a nil fn or a
// duplicate, since registration happens at init time.
func Register(name string, fn Func) Candidate {
	if name == "" || fn == nil {
		panic("executor: Register requires a name and a function")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic("executor: Register called twice for " + name)
	}
	registry[name] = fn
	return Candidate{Name: name}
}

// Lookup returns the candidate registered under name.
func Lookup(name string) (Candidate, error) {
	if _, ok := lookupFunc(name); !ok {
		return Candidate{}, fmt.Errorf("%w: %s", ErrUnknownCandidate, name)
	}
	return Candidate{Name: name}, nil
}

// Candidates returns the sorted names of all registered candidates.
func Candidates() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFunc(name string) (Func, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	fn, ok := registry[name]
	return fn, ok
}
