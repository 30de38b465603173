package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-pgx/internal/pharmacogene"
	"github.com/inodb/vibe-pgx/internal/risk"
)

// WriteAssessments replaces the cached assessments for key, batch-inserting
// them with the Appender API. Row order is preserved. A failed write leaves
// no entry for key.
func (s *Store) WriteAssessments(key string, as []risk.Assessment) error {
	if _, err := s.db.Exec("DELETE FROM assessment_results WHERE cache_key=?", key); err != nil {
		return fmt.Errorf("replace assessments: %w", err)
	}
	if len(as) == 0 {
		return nil
	}

	lists := make([][4]string, len(as))
	for i, a := range as {
		l, err := encodeLists(a)
		if err != nil {
			return err
		}
		lists[i] = l
	}

	var generation int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(generation), 0) + 1 FROM assessment_results").Scan(&generation); err != nil {
		return fmt.Errorf("next generation: %w", err)
	}

	if err := s.appendAssessments(key, generation, as, lists); err != nil {
		if _, derr := s.db.Exec("DELETE FROM assessment_results WHERE cache_key=?", key); derr != nil {
			return fmt.Errorf("%w (discard partial entry: %v)", err, derr)
		}
		return err
	}
	return nil
}

func (s *Store) appendAssessments(key string, generation int64, as []risk.Assessment, lists [][4]string) (err error) {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "assessment_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	// Close flushes whatever was appended, so it runs before the caller
	// discards a failed entry.
	defer func() {
		if cerr := appender.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close appender: %w", cerr)
		}
	}()

	now := time.Now().UTC()
	for i, a := range as {
		if err := appender.AppendRow(
			key, int32(i), generation, now,
			a.Drug, a.Gene, string(a.Phenotype), a.Diplotype, string(a.Level),
			a.Confidence, a.VariantEvidence, a.GuidelineMatch, a.DataCompleteness,
			a.VariantImpact, a.Severity,
			a.ClinicalNote, a.Recommendation, a.GuidelineURL,
			lists[i][0], lists[i][1], lists[i][2], lists[i][3],
		); err != nil {
			return fmt.Errorf("append assessment: %w", err)
		}
	}
	return appender.Flush()
}

// LookupAssessments returns the cached assessments for key in their
// original order. The bool is false when nothing is cached.
func (s *Store) LookupAssessments(key string) ([]risk.Assessment, bool, error) {
	rows, err := s.db.Query(`SELECT
		drug, gene, phenotype, diplotype, risk_level,
		confidence, variant_evidence, guideline_match, data_completeness,
		variant_impact, severity,
		clinical_note, recommendation, guideline_url,
		evidence_sources, alternative_options, monitoring_requirements, matched_markers
		FROM assessment_results
		WHERE cache_key=?
		ORDER BY seq`, key)
	if err != nil {
		return nil, false, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []risk.Assessment
	for rows.Next() {
		var a risk.Assessment
		var phenotype, level string
		var sources, alternatives, monitoring, markers string
		if err := rows.Scan(
			&a.Drug, &a.Gene, &phenotype, &a.Diplotype, &level,
			&a.Confidence, &a.VariantEvidence, &a.GuidelineMatch, &a.DataCompleteness,
			&a.VariantImpact, &a.Severity,
			&a.ClinicalNote, &a.Recommendation, &a.GuidelineURL,
			&sources, &alternatives, &monitoring, &markers,
		); err != nil {
			return nil, false, fmt.Errorf("scan assessment: %w", err)
		}
		a.Phenotype = pharmacogene.Phenotype(phenotype)
		a.Level = risk.Level(level)
		if err := decodeLists(&a, sources, alternatives, monitoring, markers); err != nil {
			return nil, false, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, len(out) > 0, nil
}

// Prune deletes whole cache entries, oldest first, until at most maxRows
// rows remain. maxRows <= 0 disables pruning. Returns the rows deleted.
func (s *Store) Prune(maxRows int) (int64, error) {
	if maxRows <= 0 {
		return 0, nil
	}
	res, err := s.db.Exec(`DELETE FROM assessment_results WHERE cache_key IN (
		SELECT cache_key FROM (
			SELECT cache_key,
				SUM(COUNT(*)) OVER (ORDER BY MAX(generation) DESC, cache_key) AS running
			FROM assessment_results
			GROUP BY cache_key
		) WHERE running > ?
	)`, maxRows)
	if err != nil {
		return 0, fmt.Errorf("prune assessments: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached assessment rows.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM assessment_results").Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// ClearAssessments removes all cached assessments.
func (s *Store) ClearAssessments() error {
	_, err := s.db.Exec("DELETE FROM assessment_results")
	return err
}

func encodeLists(a risk.Assessment) ([4]string, error) {
	var out [4]string
	for i, v := range []any{a.EvidenceSources, a.AlternativeOptions, a.MonitoringRequirements, a.MatchedMarkers} {
		data, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("encode assessment lists: %w", err)
		}
		out[i] = string(data)
	}
	return out, nil
}

func decodeLists(a *risk.Assessment, sources, alternatives, monitoring, markers string) error {
	for _, f := range []struct {
		raw  string
		dest any
	}{
		{sources, &a.EvidenceSources},
		{alternatives, &a.AlternativeOptions},
		{monitoring, &a.MonitoringRequirements},
		{markers, &a.MatchedMarkers},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dest); err != nil {
			return fmt.Errorf("decode assessment lists: %w", err)
		}
	}
	return nil
}
