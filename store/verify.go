package store

import (
	"context"
	"fmt"
)

// Report is the outcome of Verify.
type Report struct {
	Generation string   `json:"generation"`
	Indexed    int      `json:"indexed"`
	Mapping    int      `json:"mapping"`
	Problems   []string `json:"problems,omitempty"`
}

// OK reports whether no problem was found.
func (r *Report) OK() bool { return len(r.Problems) == 0 }

func (r *Report) addf(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify checks the on-disk positional invariant of the current generation:
// the mapping is as long as the index, identifiers are unique, and the
// record of mapping[i] is stored at position i with a vector at squared L2
// distance 0 from index vector i.
func (s *Store) Verify(ctx context.Context) (Report, error) {
	name, err := s.currentName()
	if err != nil {
		return Report{}, err
	}
	gen, err := s.load(name)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Generation: gen.manifest.Generation,
		Indexed:    gen.index.Len(),
		Mapping:    len(gen.mapping),
	}
	if report.Indexed != report.Mapping {
		report.addf("index holds %d vectors but mapping has %d identifiers", report.Indexed, report.Mapping)
	}
	db, err := s.openRecords(gen.manifest.Generation)
	if err != nil {
		return report, err
	}
	defer db.Close()

	seen := make(map[string]int, len(gen.mapping))
	for i, id := range gen.mapping {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if prev, ok := seen[id]; ok {
			report.addf("identifier %q at positions %d and %d", id, prev, i)
			continue
		}
		seen[id] = i
		vec, ok := gen.index.Vector(i)
		if !ok {
			continue
		}
		position, distance, err := db.Distance(ctx, id, vec)
		if err != nil {
			report.addf("position %d: record %q: %v", i, id, err)
			continue
		}
		if !position.Valid || int(position.Int64) != i {
			report.addf("position %d: record %q stored at position %v", i, id, nullable(position.Valid, position.Int64))
		}
		if !distance.Valid || distance.Float64 != 0 {
			report.addf("position %d: record %q vector differs from index (vec_l2sq=%v)", i, id, nullable(distance.Valid, distance.Float64))
		}
	}
	_, indexed, err := db.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("store: count records: %w", err)
	}
	if indexed != len(gen.mapping) {
		report.addf("records.db has %d indexed records, mapping has %d", indexed, len(gen.mapping))
	}
	if report.OK() {
		s.logger.Info().Str("generation", report.Generation).Int("indexed", report.Indexed).Msg("generation verified")
	} else {
		s.logger.Error().Str("generation", report.Generation).Strs("problems", report.Problems).Msg("generation failed verification")
	}
	return report, nil
}

func nullable[T any](valid bool, v T) any {
	if !valid {
		return "NULL"
	}
	return v
}
