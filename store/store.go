package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/nlsql/index"
	"github.com/viant/nlsql/index/cover"
	"github.com/viant/nlsql/index/flat"
	"github.com/viant/nlsql/metadata"
)

var (
	// ErrIndexNotFound is returned when no generation is published or its
	// files are missing.
	ErrIndexNotFound = errors.New("store: index not found")
	// ErrEmptyIndex is returned by Build when no record could be indexed.
	ErrEmptyIndex = errors.New("store: no embeddable records")
	// ErrDimensionMismatch is returned for a query of the wrong dimension.
	ErrDimensionMismatch = errors.New("store: dimension mismatch")
	// ErrInconsistentGeneration is returned when a generation's index and
	// mapping disagree on length. Verify reports the details.
	ErrInconsistentGeneration = errors.New("store: index and mapping disagree")
)

// Match is one ranked table.
type Match struct {
	ID       string  `json:"id"`
	Distance float32 `json:"distance"`
}

// SearchResult is ordered by ascending squared L2 distance.
type SearchResult []Match

// IDs returns the table identifiers in rank order.
func (r SearchResult) IDs() []string {
	ids := make([]string, len(r))
	for i, m := range r {
		ids[i] = m.ID
	}
	return ids
}

// IndexFactory creates an empty index of the given kind.
type IndexFactory func(kind index.Kind) (index.Index, error)

// NewIndex is the default IndexFactory.
func NewIndex(kind index.Kind) (index.Index, error) {
	switch kind {
	case index.KindFlat, "":
		return flat.New(), nil
	case index.KindCover:
		return cover.New(cover.DefaultBase), nil
	}
	return nil, fmt.Errorf("store: unsupported index kind %q", kind)
}

// Store manages generations under a data directory.
type Store struct {
	dir      string
	kind     index.Kind
	newIndex IndexFactory
	logger   zerolog.Logger

	buildMu sync.Mutex
	mu      sync.Mutex
	cached  *generation
}

type generation struct {
	manifest Manifest
	index    index.Index
	mapping  []string
}

// Option configures a Store.
type Option func(*Store)

// WithKind sets the index kind used by Build.
func WithKind(kind index.Kind) Option {
	return func(s *Store) { s.kind = kind }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIndexFactory replaces the index constructor.
func WithIndexFactory(f IndexFactory) Option {
	return func(s *Store) { s.newIndex = f }
}

// New opens or creates a store rooted at dir.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: data dir is empty")
	}
	s := &Store{dir: dir, kind: index.KindFlat, newIndex: NewIndex, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(filepath.Join(dir, generationDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Build replaces the published generation with one built from records.
// Records without a vector or with another dimension than the first indexed
// one are stored but not indexed. Blank and duplicate identifiers are
// dropped. Each skip is logged.
func (s *Store) Build(ctx context.Context, records []metadata.TableRecord) (Manifest, error) {
	return s.build(ctx, records, s.kind)
}

func (s *Store) build(ctx context.Context, records []metadata.TableRecord, kind index.Kind) (Manifest, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	previous, err := s.currentName()
	if err != nil && !errors.Is(err, ErrIndexNotFound) {
		return Manifest{}, err
	}

	var (
		kept    []indexedRecord
		vectors [][]float32
		mapping []string
		seen    = make(map[string]bool, len(records))
		dim     int
	)
	for _, rec := range records {
		if rec.ID == "" {
			s.logger.Warn().Msg("skipping record with blank identifier")
			continue
		}
		if seen[rec.ID] {
			s.logger.Warn().Str("table", rec.ID).Msg("skipping duplicate table identifier")
			continue
		}
		seen[rec.ID] = true
		entry := indexedRecord{TableRecord: rec, position: -1}
		switch {
		case !rec.Embedded():
			s.logger.Warn().Str("table", rec.ID).Msg("record has no embedding, not indexed")
		case dim != 0 && len(rec.Embedding) != dim:
			s.logger.Warn().Str("table", rec.ID).Int("dimension", len(rec.Embedding)).Int("expected", dim).Msg("embedding dimension mismatch, not indexed")
		default:
			dim = len(rec.Embedding)
			entry.position = len(vectors)
			vectors = append(vectors, rec.Embedding)
			mapping = append(mapping, rec.ID)
		}
		kept = append(kept, entry)
	}

	if len(vectors) == 0 {
		s.logger.Warn().Int("records", len(records)).Msg("nothing to index, unpublishing current generation")
		if err := s.unpublish(); err != nil {
			return Manifest{}, err
		}
		s.dropCache()
		s.prune(previous)
		return Manifest{}, ErrEmptyIndex
	}

	idx, err := s.newIndex(kind)
	if err != nil {
		return Manifest{}, err
	}
	if err := idx.Build(vectors); err != nil {
		return Manifest{}, fmt.Errorf("store: build %s index: %w", kind, err)
	}

	manifest := Manifest{
		Generation: newGenerationName(),
		Kind:       kind,
		Dimension:  dim,
		Indexed:    len(mapping),
		Records:    len(kept),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.writeGeneration(ctx, manifest, idx, mapping, kept); err != nil {
		_ = os.RemoveAll(s.generationPath(manifest.Generation))
		return Manifest{}, err
	}
	if err := s.publish(manifest.Generation); err != nil {
		_ = os.RemoveAll(s.generationPath(manifest.Generation))
		return Manifest{}, err
	}
	s.prune(manifest.Generation, previous)
	s.logger.Info().
		Str("generation", manifest.Generation).
		Str("kind", string(kind)).
		Int("dimension", dim).
		Int("indexed", manifest.Indexed).
		Int("records", manifest.Records).
		Msg("published generation")
	return manifest, nil
}

func (s *Store) writeGeneration(ctx context.Context, manifest Manifest, idx index.Index, mapping []string, records []indexedRecord) error {
	dir := s.generationPath(manifest.Generation)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create generation: %w", err)
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("store: encode index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("store: write index: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, mappingFile), mapping); err != nil {
		return fmt.Errorf("store: write mapping: %w", err)
	}
	db, err := openRecordDB(filepath.Join(dir, recordsFile))
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := db.Insert(ctx, records); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, manifestFile), manifest); err != nil {
		return fmt.Errorf("store: write manifest: %w", err)
	}
	return nil
}

// current returns the published generation, loading it on change.
func (s *Store) current() (*generation, error) {
	name, err := s.currentName()
	if err != nil {
		s.dropCache()
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.cached.manifest.Generation == name {
		return s.cached, nil
	}
	gen, err := s.load(name)
	if err != nil {
		return nil, err
	}
	if gen.index.Len() != len(gen.mapping) {
		s.logger.Error().Str("generation", name).Int("index", gen.index.Len()).Int("mapping", len(gen.mapping)).Msg("refusing generation")
		return nil, fmt.Errorf("%w: generation %s: index holds %d vectors, mapping %d", ErrInconsistentGeneration, name, gen.index.Len(), len(gen.mapping))
	}
	s.cached = gen
	return gen, nil
}

func (s *Store) dropCache() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *Store) load(name string) (*generation, error) {
	gen := &generation{}
	if err := readJSON(s.generationPath(name, manifestFile), &gen.manifest); err != nil {
		return nil, err
	}
	if err := readJSON(s.generationPath(name, mappingFile), &gen.mapping); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.generationPath(name, indexFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexNotFound, indexFile, err)
	}
	idx, err := s.newIndex(gen.manifest.Kind)
	if err != nil {
		return nil, err
	}
	if err := idx.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("store: load index of %s: %w", name, err)
	}
	gen.index = idx
	s.logger.Debug().Str("generation", name).Int("indexed", idx.Len()).Msg("loaded generation")
	return gen, nil
}

// Search returns the topK records closest to query. topK <= 0 yields an
// empty result; a larger topK than the indexed count is clamped.
func (s *Store) Search(ctx context.Context, query []float32, topK int) (SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gen, err := s.current()
	if err != nil {
		return nil, err
	}
	if topK <= 0 || gen.index.Len() == 0 {
		return SearchResult{}, nil
	}
	if len(query) != gen.index.Dim() {
		return nil, fmt.Errorf("%w: query %d, index %d", ErrDimensionMismatch, len(query), gen.index.Dim())
	}
	if topK > gen.index.Len() {
		topK = gen.index.Len()
	}
	neighbors, err := gen.index.Search(query, topK)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	result := make(SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Position < 0 || n.Position >= len(gen.mapping) {
			s.logger.Warn().Int("position", n.Position).Msg("index returned position outside mapping")
			continue
		}
		result = append(result, Match{ID: gen.mapping[n.Position], Distance: n.Distance})
	}
	return result, nil
}

// Records returns the stored records for ids, in the order given. Unknown
// identifiers are skipped.
func (s *Store) Records(ctx context.Context, ids []string) ([]metadata.TableRecord, error) {
	name, err := s.currentName()
	if err != nil {
		return nil, err
	}
	db, err := s.openRecords(name)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	found, err := db.ByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("store: load records: %w", err)
	}
	out := make([]metadata.TableRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := found[id]; ok {
			out = append(out, rec.TableRecord)
		}
	}
	return out, nil
}

func (s *Store) openRecords(name string) (*recordDB, error) {
	path := s.generationPath(name, recordsFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexNotFound, recordsFile, err)
	}
	return openRecordDB(path)
}

// Reindex rebuilds the current generation with another index kind from the
// persisted records, without re-embedding.
func (s *Store) Reindex(ctx context.Context, kind index.Kind) (Manifest, error) {
	name, err := s.currentName()
	if err != nil {
		return Manifest{}, err
	}
	db, err := s.openRecords(name)
	if err != nil {
		return Manifest{}, err
	}
	stored, err := db.All(ctx)
	_ = db.Close()
	if err != nil {
		return Manifest{}, fmt.Errorf("store: load records: %w", err)
	}
	records := make([]metadata.TableRecord, len(stored))
	for i, rec := range stored {
		records[i] = rec.TableRecord
	}
	s.logger.Info().Str("from", name).Str("kind", string(kind)).Int("records", len(records)).Msg("reindexing")
	return s.build(ctx, records, kind)
}

// Stats describes the published generation.
type Stats struct {
	Manifest
	StoredIndexed int `json:"stored_indexed"`
}

// Stats reports the current generation.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	gen, err := s.current()
	if err != nil {
		return Stats{}, err
	}
	db, err := s.openRecords(gen.manifest.Generation)
	if err != nil {
		return Stats{}, err
	}
	defer db.Close()
	stats := Stats{Manifest: gen.manifest}
	stats.Indexed = gen.index.Len()
	stats.Dimension = gen.index.Dim()
	if stats.Records, stats.StoredIndexed, err = db.Count(ctx); err != nil {
		return Stats{}, fmt.Errorf("store: count records: %w", err)
	}
	return stats, nil
}
