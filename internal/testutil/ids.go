package testutil

// FixedRunID is the run ID returned by a FixedIDGenerator created with an
// empty id.
const FixedRunID = "test-run-default"

// FixedIDGenerator returns the same run ID every time.
//
// Unlike engine.FixedGenerator, which hands out ids in sequence and panics
// when they run out, this generator never runs out. Golden snapshots and
// JSON output that embed a run ID stay byte-identical across runs.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator returning id, or FixedRunID when
// id is empty.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = FixedRunID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
