package cache

// LayoutKeyOpts carries everything that changes the geometry a layout
// run produces for a fixed graph.
type LayoutKeyOpts struct {
	Strategy string
	Tool     string
	Depth    int
	Zoom     bool
}

// ArtifactKeyOpts carries everything that changes a rendered artifact
// for a fixed layout.
type ArtifactKeyOpts struct {
	Format   string
	Theme    string
	Detailed bool
	Scale    float64
}

// Keyer derives cache keys from content hashes and options. Key
// derivation is split from storage so deployments can prefix keys (see
// ScopedKeyer) without touching backends.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into the key, so any change in inputs
// lands on a fresh entry.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
