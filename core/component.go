package core

// Component is an instance of a Blueprint with persistent state and an
// Address (spec.md §3, glossary). State is an opaque SBOR blob whose only
// handles into the resource graph are the Vid/Mid values it happens to
// encode — the component can reach its resources only through those
// handles (design note 9: no owning links are materialised across
// records).
type Component struct {
	Addr          Address
	Blueprint     Address
	BlueprintName string
	State         []byte
}

// PackageEntity is an immutable validated bytecode module plus its export
// table (spec.md §3). Named PackageEntity, not Package, to avoid shadowing
// the Go keyword in call sites (`core.PackageEntity`).
type PackageEntity struct {
	Addr    Address
	Code    []byte
	Exports map[string]bool // set of "Blueprint.function" / "Blueprint.method" export names
}

func exportKey(blueprint, fn string) string { return blueprint + "." + fn }

// HasExport reports whether the package exports the given blueprint
// function/method.
func (p *PackageEntity) HasExport(blueprint, fn string) bool {
	return p.Exports[exportKey(blueprint, fn)]
}
