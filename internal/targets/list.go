package targets

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"pingtrend/internal/models"
)

var (
	ErrInvalidTarget   = errors.New("target needs a name or an address")
	ErrDuplicateTarget = errors.New("target already exists")
	ErrUnknownTarget   = errors.New("target not found")
	ErrListLocked      = errors.New("target list is locked while a run is active")
)

// List holds the ordered set of probe targets. Names are unique, ignoring case.
type List struct {
	mu      sync.RWMutex
	targets []models.Target
	locked  bool
}

// NewList creates a list with the given targets, skipping invalid or duplicate ones.
func NewList(initial ...models.Target) *List {
	l := &List{}
	for _, t := range initial {
		_ = l.Add(t.Name, t.Address)
	}
	return l
}

// Add appends a target. An empty name defaults to the address and vice versa.
func (l *List) Add(name, address string) error {
	t, err := Normalize(name, address)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return ErrListLocked
	}
	if l.indexOf(t.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateTarget, t.Name)
	}

	l.targets = append(l.targets, t)
	return nil
}

// Remove deletes the target with the given name.
func (l *List) Remove(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.locked {
		return ErrListLocked
	}

	i := l.indexOf(strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	l.targets = append(l.targets[:i], l.targets[i+1:]...)
	return nil
}

// Targets returns a copy of the current targets in insertion order.
func (l *List) Targets() []models.Target {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Target, len(l.targets))
	copy(out, l.targets)
	return out
}

// Len returns the number of targets.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.targets)
}

// Lock freezes the list and returns its contents.
func (l *List) Lock() []models.Target {
	l.mu.Lock()
	l.locked = true
	l.mu.Unlock()
	return l.Targets()
}

// Unlock makes the list editable again.
func (l *List) Unlock() {
	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
}

// Locked reports whether the list is frozen.
func (l *List) Locked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.locked
}

func (l *List) indexOf(name string) int {
	for i, t := range l.targets {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}

// Normalize trims both fields and fills an empty one from the other.
func Normalize(name, address string) (models.Target, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)

	switch {
	case name == "" && address == "":
		return models.Target{}, ErrInvalidTarget
	case name == "":
		name = address
	case address == "":
		address = name
	}

	return models.Target{Name: name, Address: address}, nil
}

// Parse reads a target argument in the form "address" or "name=address".
func Parse(arg string) (models.Target, error) {
	name, address, found := strings.Cut(arg, "=")
	if !found {
		return Normalize("", arg)
	}
	return Normalize(name, address)
}
