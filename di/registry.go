package di

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultModule is the module used when a registration or request names none.
const DefaultModule = "default"

// Component describes a constructible value to register.
//
// Example:
//
//	reg.Register(di.Component{
//	  Module: "api",
//	  New:    func() any { return &UserApi{} },
//	})
type Component struct {
	// Module namespaces the record. Empty means DefaultModule.
	Module string

	// Alias is the lookup name. Empty derives it from the type name.
	Alias string

	// Type is the binding identity. Empty uses the dynamic type of New().
	// Declaring an interface type lets the record be the exact match for it.
	Type reflect.Type

	// New builds a fresh instance. It is called once at registration and
	// again for every transient resolution.
	New func() any
}

// Record is a registered component together with its stored instance.
type Record struct {
	Module   string
	Alias    string
	CtorName string
	Type     reflect.Type
	New      func() any
	Instance any
}

// Option configures a Registry or Resolver.
type Option func(*options)

type options struct {
	log          *zap.Logger
	clearAllowed bool
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClearAllowed permits Registry.Clear. Only test and development setups
// should pass true.
func WithClearAllowed(allowed bool) Option {
	return func(o *options) { o.clearAllowed = allowed }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Registry is a module-namespaced store of instance records.
//
// It is populated once at startup by a single goroutine and read afterwards;
// it performs no locking.
type Registry struct {
	records      []*Record
	modules      map[string][]*Record
	sealed       bool
	clearAllowed bool
	log          *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := buildOptions(opts)
	return &Registry{
		modules:      make(map[string][]*Record),
		clearAllowed: o.clearAllowed,
		log:          o.log,
	}
}

// Register validates c, constructs its instance and stores the record.
func (r *Registry) Register(c Component) (*Record, error) {
	if r.sealed {
		return nil, ErrRegistrySealed
	}
	if c.Module != "" && !IsIdentifier(c.Module) {
		return nil, InvalidIdentifierError{Field: "module", Value: c.Module}
	}
	if c.Alias != "" && !IsIdentifier(c.Alias) {
		return nil, InvalidIdentifierError{Field: "alias", Value: c.Alias}
	}
	if c.New == nil {
		return nil, ErrNilConstructor
	}

	module := c.Module
	if module == "" {
		module = DefaultModule
	}

	instance := c.New()
	if instance == nil {
		return nil, ErrNilInstance
	}

	typ := c.Type
	if typ == nil {
		typ = reflect.TypeOf(instance)
	} else if !reflect.TypeOf(instance).AssignableTo(typ) {
		return nil, WrongTypeDependencyError{
			Name:     c.Alias,
			WantType: typ.String(),
			GotType:  reflect.TypeOf(instance).String(),
		}
	}

	ctorName := TypeName(typ)
	alias := c.Alias
	if alias == "" {
		alias = DefaultAlias(ctorName)
		if !IsIdentifier(alias) {
			return nil, InvalidIdentifierError{Field: "alias", Value: alias}
		}
	}

	for _, rec := range r.modules[module] {
		switch {
		case rec.Alias == alias:
			return nil, DuplicateRegistrationError{Module: module, Field: "alias", Value: alias}
		case rec.Type == typ:
			return nil, DuplicateRegistrationError{Module: module, Field: "type", Value: typ.String()}
		case rec.CtorName == ctorName:
			return nil, DuplicateRegistrationError{Module: module, Field: "ctorName", Value: ctorName}
		}
	}

	rec := &Record{
		Module:   module,
		Alias:    alias,
		CtorName: ctorName,
		Type:     typ,
		New:      c.New,
		Instance: instance,
	}
	r.records = append(r.records, rec)
	r.modules[module] = append(r.modules[module], rec)

	r.log.Debug("component registered",
		zap.String("module", module),
		zap.String("alias", alias),
		zap.String("type", typ.String()))
	return rec, nil
}

// Lookup finds the record in module whose alias or constructor name equals name.
func (r *Registry) Lookup(module, name string) (*Record, bool) {
	if module == "" {
		module = DefaultModule
	}
	for _, rec := range r.modules[module] {
		if rec.Alias == name || rec.CtorName == name {
			return rec, true
		}
	}
	return nil, false
}

// Candidates returns the records in module bound exactly to t or whose
// instance is assignable to t, in registration order.
func (r *Registry) Candidates(module string, t reflect.Type) []*Record {
	if module == "" {
		module = DefaultModule
	}
	var out []*Record
	for _, rec := range r.modules[module] {
		if rec.Type == t || reflect.TypeOf(rec.Instance).AssignableTo(t) {
			out = append(out, rec)
		}
	}
	return out
}

// Records returns every record in registration order.
func (r *Registry) Records() []*Record {
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int { return len(r.records) }

// Seal rejects further registrations. The weaver seals the registry it weaves.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed }

// Clear wipes all records and unseals the registry. It fails unless the
// registry was built WithClearAllowed(true).
func (r *Registry) Clear() error {
	if !r.clearAllowed {
		return ErrClearNotAllowed
	}
	r.records = nil
	r.modules = make(map[string][]*Record)
	r.sealed = false
	return nil
}

// IsIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_]*.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// TypeName returns the name of t with pointer indirections and type
// arguments stripped, so Repo[int] is named Repo. Unnamed types fall back
// to their string form.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return t.String()
	}
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

// DefaultAlias lower-cases the first rune of name unless the second rune is
// upper-case, in which case name is treated as an acronym and kept.
func DefaultAlias(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	if second, _ := utf8.DecodeRuneInString(name[size:]); unicode.IsUpper(second) {
		return name
	}
	return string(unicode.ToLower(first)) + name[size:]
}
