package lastfm

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// keySep joins the parts of a composite identity key.
const keySep = "\x1f"

// Key is a deterministic identity value derived from an entity's
// identity-determining fields.
type Key string

// Fields carries identity-determining values by field name.
type Fields map[string]string

// Kind describes an entity type to the registry.
type Kind struct {
	// Name is the entity type name, e.g. "artist".
	Name string
	// Fields lists the identity-determining fields in key order.
	Fields []string
	// SubjectScoped reports whether instances constructed under a subject
	// (such as a chart) get an identity separate from unscoped ones. Chart
	// kinds are not scoped, since they are themselves the subjects.
	SubjectScoped bool
}

// Key computes the identity key for fields. Every field in k.Fields must be
// present and non-empty. Values are Unicode case-folded, so "Muse" and
// "MUSE" share a key.
func (k *Kind) Key(fields Fields) (Key, error) {
	parts := make([]string, len(k.Fields))
	for i, name := range k.Fields {
		v := strings.TrimSpace(fields[name])
		if v == "" {
			return "", &IdentityError{Kind: k.Name, Field: name}
		}
		parts[i] = fold(v)
	}
	return Key(strings.Join(parts, keySep)), nil
}

func (k *Kind) String() string {
	return k.Name
}

// fold returns the case-folded form of s. A Caser is stateful, so one is
// built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Entity is implemented by every registry-managed domain object.
type Entity interface {
	// Kind returns the entity type descriptor.
	Kind() *Kind
	// Key returns the identity key the entity was registered under.
	Key() Key

	identity() identity
}

// scopedKey is the effective registry key: the subject's identity (empty
// when unscoped) paired with the base key.
type scopedKey struct {
	subject string
	base    Key
}

// Registry guarantees at most one live instance per (kind, key).
//
// Entries are never evicted, so a long-running process that touches many
// entities grows without bound. Create a new Registry (or Client) to start
// fresh.
type Registry struct {
	mu      sync.Mutex
	entries map[*Kind]map[scopedKey]Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[*Kind]map[scopedKey]Entity)}
}

// ComputeKey computes the identity key of kind from fields.
func (r *Registry) ComputeKey(kind *Kind, fields Fields) (Key, error) {
	return kind.Key(fields)
}

// ResolveOrRegister returns the instance registered under (kind, key),
// calling ctor to build and register one if there is none. ctor runs at
// most once per identity, including under concurrent calls.
//
// When subject is non-nil and kind is subject-scoped, the identity is
// qualified by the subject.
func (r *Registry) ResolveOrRegister(kind *Kind, key Key, subject Entity, ctor func() Entity) Entity {
	sk := scope(kind, key, subject)

	r.mu.Lock()
	defer r.mu.Unlock()

	byKey, ok := r.entries[kind]
	if !ok {
		byKey = make(map[scopedKey]Entity)
		r.entries[kind] = byKey
	}
	if e, ok := byKey[sk]; ok {
		return e
	}

	e := ctor()
	byKey[sk] = e
	return e
}

// Lookup returns the instance registered under (kind, key, subject), if any.
func (r *Registry) Lookup(kind *Kind, key Key, subject Entity) (Entity, bool) {
	sk := scope(kind, key, subject)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[kind][sk]
	return e, ok
}

// Bypass builds an instance without consulting or changing the registry.
// It is for value-like objects that must never be deduplicated.
func (r *Registry) Bypass(ctor func() Entity) Entity {
	return ctor()
}

// Len returns the number of registered instances across all kinds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, byKey := range r.entries {
		n += len(byKey)
	}
	return n
}

func scope(kind *Kind, key Key, subject Entity) scopedKey {
	sk := scopedKey{base: key}
	if subject != nil && kind.SubjectScoped {
		sk.subject = subjectKey(subject)
	}
	return sk
}

// subjectKey is the identity string of an entity used as a subject, or as a
// component of another entity's key.
func subjectKey(e Entity) string {
	return e.Kind().Name + keySep + string(e.Key())
}

// resolve computes the key for fields and returns the canonical instance,
// building it with ctor when new. ctor receives the computed key.
func resolve[T Entity](r *Registry, kind *Kind, fields Fields, subject Entity, ctor func(Key) T) (T, error) {
	key, err := kind.Key(fields)
	if err != nil {
		var zero T
		return zero, err
	}
	e := r.ResolveOrRegister(kind, key, subject, func() Entity { return ctor(key) })
	return e.(T), nil
}
