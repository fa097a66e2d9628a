// Package host owns the instances this process serves.
//
// The Host holds the only strong references to its instances; everything
// else — the registry, the dispatcher, the HTTP surface — sees them
// through non-owning references. Releasing an instance here is therefore
// sufficient to end its life, no matter how many lookups the registry has
// served for it.
//
// Processor kinds self-register factories in their package init()
// functions via MustRegister; the daemon imports processor packages for
// side effects to make them available.
package host
