package docgen

import "fmt"

// Resolver selects the component definitions to document in a file.
type Resolver interface {
	Resolve(f *File) ([]*Definition, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(f *File) ([]*Definition, error)

// Resolve calls fn(f).
func (fn ResolverFunc) Resolve(f *File) ([]*Definition, error) {
	return fn(f)
}

var (
	// FindAllComponentDefinitions returns every component in the file.
	FindAllComponentDefinitions Resolver = ResolverFunc(func(f *File) ([]*Definition, error) {
		return findDefinitions(f), nil
	})

	// FindAllExportedComponentDefinitions returns every exported component.
	FindAllExportedComponentDefinitions Resolver = ResolverFunc(func(f *File) ([]*Definition, error) {
		return exportedDefinitions(f), nil
	})

	// FindExportedComponentDefinition returns the single exported component
	// and fails with ErrMultipleDefinitions when there are several.
	FindExportedComponentDefinition Resolver = ResolverFunc(func(f *File) ([]*Definition, error) {
		defs := exportedDefinitions(f)
		if len(defs) > 1 {
			return nil, ErrMultipleDefinitions
		}
		return defs, nil
	})
)

func exportedDefinitions(f *File) []*Definition {
	var out []*Definition
	for _, def := range findDefinitions(f) {
		if def.Exported {
			out = append(out, def)
		}
	}
	return out
}

// ResolverByName returns the resolver registered under name. The empty
// name selects FindAllComponentDefinitions.
func ResolverByName(name string) (Resolver, error) {
	switch name {
	case "", "findAllComponentDefinitions", "all":
		return FindAllComponentDefinitions, nil
	case "findAllExportedComponentDefinitions", "exported":
		return FindAllExportedComponentDefinitions, nil
	case "findExportedComponentDefinition", "single":
		return FindExportedComponentDefinition, nil
	default:
		return nil, fmt.Errorf("unknown resolver %q", name)
	}
}
