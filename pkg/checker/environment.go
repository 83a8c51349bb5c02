package checker

import (
	"brook/pkg/types"
)

// Environment manages the ambient lexical bindings within scopes. Names live
// in two namespaces: the value namespace (declared vars, class constructor
// values) and the type namespace (aliases, interfaces, class instance types).
// `typeof` and `mixins` resolve in the value namespace only; ordinary
// annotations resolve types first and fall back to values, so a class name is
// usable in type position even when only its constructor binding is in reach.
type Environment struct {
	values     map[string]types.Type
	typeNames  map[string]types.Type
	typeParams map[string]*types.TypeParameter
	outer      *Environment
}

// NewEnvironment creates a new top-level environment.
func NewEnvironment() *Environment {
	return &Environment{
		values:     make(map[string]types.Type),
		typeNames:  make(map[string]types.Type),
		typeParams: make(map[string]*types.TypeParameter),
		outer:      nil,
	}
}

// NewEnclosedEnvironment creates a new environment nested within an outer one.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{
		values:     make(map[string]types.Type),
		typeNames:  make(map[string]types.Type),
		typeParams: make(map[string]*types.TypeParameter),
		outer:      outer,
	}
}

// Define adds a value-namespace binding to the current scope.
// Returns false if the name is already bound as a value in this scope.
func (e *Environment) Define(name string, typ types.Type) bool {
	if _, exists := e.values[name]; exists {
		return false
	}
	e.values[name] = typ
	return true
}

// DefineType adds a type-namespace binding to the current scope.
// Returns false if the name is already bound as a type in this scope.
// A name may be bound in both namespaces at once (declared classes are).
func (e *Environment) DefineType(name string, typ types.Type) bool {
	if _, exists := e.typeNames[name]; exists {
		return false
	}
	e.typeNames[name] = typ
	return true
}

// Resolve looks up a *value* name in the current environment and its outer
// scopes.
func (e *Environment) Resolve(name string) (types.Type, bool) {
	if checkerDebug {
		debugPrintf("// [Env Resolve] env=%p, name='%s', outer=%p\n", e, name, e.outer)
	}
	if typ, ok := e.values[name]; ok {
		return typ, true
	}
	if e.outer != nil {
		return e.outer.Resolve(name)
	}
	return nil, false
}

// ResolveType looks up a *type* name in the current environment and its outer
// scopes. Type parameters are not consulted here; they have their own lookup.
func (e *Environment) ResolveType(name string) (types.Type, bool) {
	if checkerDebug {
		debugPrintf("// [Env ResolveType] env=%p, name='%s', outer=%p\n", e, name, e.outer)
	}
	if typ, ok := e.typeNames[name]; ok {
		return typ, true
	}
	if e.outer != nil {
		return e.outer.ResolveType(name)
	}
	return nil, false
}

// DefineTypeParameter binds a type parameter in the current scope.
// Returns false if a parameter of that name already exists in this scope.
func (e *Environment) DefineTypeParameter(param *types.TypeParameter) bool {
	if _, exists := e.typeParams[param.Name]; exists {
		return false
	}
	e.typeParams[param.Name] = param
	return true
}

// ResolveTypeParameter looks up a type parameter by name, innermost scope
// first.
func (e *Environment) ResolveTypeParameter(name string) (*types.TypeParameter, bool) {
	if param, ok := e.typeParams[name]; ok {
		return param, true
	}
	if e.outer != nil {
		return e.outer.ResolveTypeParameter(name)
	}
	return nil, false
}

// InPolymorphicScope reports whether any type parameter is bound in this
// environment or an enclosing one. The `*` annotation defers to an
// existential inside a polymorphic body and forces a fresh type variable
// outside of one.
func (e *Environment) InPolymorphicScope() bool {
	if len(e.typeParams) > 0 {
		return true
	}
	if e.outer != nil {
		return e.outer.InPolymorphicScope()
	}
	return false
}
