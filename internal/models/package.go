package models

// PackageMetadata represents everything the metadata source found in one package
type PackageMetadata struct {
	PackageName string          // name of the Go package
	PackagePath string          // file system path to the package
	ImportPath  string          // import path, when the module is known
	Interfaces  []*RawInterface // remote and callback interfaces in declaration order
	Errors      []string        // package-level error variables
}

// Remote returns the interfaces declared with //remoter::remote
func (p *PackageMetadata) Remote() []*RawInterface {
	var out []*RawInterface
	for _, iface := range p.Interfaces {
		if !iface.Callback {
			out = append(out, iface)
		}
	}
	return out
}

// Lookup finds an interface by Go name
func (p *PackageMetadata) Lookup(name string) (*RawInterface, bool) {
	for _, iface := range p.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return nil, false
}

// GenerationResult summarises the files produced for one package
type GenerationResult struct {
	PackagePath string
	Files       []GeneratedFile
	Interfaces  int
	Callbacks   int
	Records     int
}

// GeneratedFile is one emitted source unit
type GeneratedFile struct {
	Name    string // base file name, e.g. autogen_greeter_proxy.go
	Content []byte
}
