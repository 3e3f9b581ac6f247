// Package auditstore persists a write-only audit trail of pipeline runs
// to Postgres. The core never reads from it — it exists for operator
// review after the fact, not as a second source of truth for
// resolution.
package auditstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/vnagri/claimfusion/internal/claimerr"
	"github.com/vnagri/claimfusion/internal/resolver"
	pkgerrors "github.com/vnagri/claimfusion/pkgs/errors"
	"github.com/vnagri/claimfusion/pkgs/utils"
)

// RunRecord describes one Workflow or Validator invocation.
type RunRecord struct {
	RunID           uuid.UUID
	Kind            string // "workflow" or "validate"
	Crop            string
	Query           string
	Summary         string
	ClaimCount      int
	Contradictions  int
	ValidationScore *float64 // nil for workflow runs, set for validate runs
	CreatedAt       time.Time
}

// Store writes RunRecord and per-ResolvedClaim audit rows to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-dialed connection pool (see global.PostgresPool).
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// wrapPGErr classifies a Postgres driver error: an integrity constraint
// violation means the caller handed us a malformed RunRecord or
// ResolvedClaim, anything else is an internal storage fault.
func wrapPGErr(message string, err error) error {
	if pgErr, ok := pkgerrors.NewPGErr(err); ok && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return claimerr.New(claimerr.KindInvalidInput, message, pgErr)
	}
	return claimerr.New(claimerr.KindInternal, message, err)
}

// InsertRun records one pipeline invocation.
func (s *Store) InsertRun(ctx context.Context, rec RunRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO runs (run_id, kind, crop, query, summary, claim_count, contradiction_count, validation_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.RunID, rec.Kind, rec.Crop, rec.Query, rec.Summary, rec.ClaimCount, rec.Contradictions, rec.ValidationScore, rec.CreatedAt)
	if err != nil {
		return wrapPGErr("auditstore: insert run", err)
	}
	return nil
}

// InsertResolvedClaim records one ResolvedClaim emitted during runID,
// optionally alongside the embedding computed for its gold claim's
// object during judging (nil when no embedder is configured).
func (s *Store) InsertResolvedClaim(ctx context.Context, runID uuid.UUID, rc resolver.ResolvedClaim, embedding []float32) error {
	c := rc.GoldClaim

	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := utils.ToPgVector(embedding)
		vec = &v
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO resolved_claims
			(run_id, subject, predicate, object, context, confidence, source_url,
			 total_score, has_contradictions, contradiction_count, support_urls, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		runID, c.Subject, c.Predicate, c.Object, c.Context, c.Confidence, c.SourceURL,
		rc.TotalScore, rc.HasContradictions, len(rc.ContradictionDetails), rc.SupportURLs, vec,
	)
	if err != nil {
		return fmt.Errorf("auditstore: insert resolved claim: %w", wrapPGErr("insert resolved claim", err))
	}
	return nil
}

// InsertResolvedClaims is a convenience wrapper writing every resolved
// claim of a run; embeddings is keyed by index into resolved and may be
// nil or shorter than resolved when no embedding was computed for a
// given cluster.
func (s *Store) InsertResolvedClaims(ctx context.Context, runID uuid.UUID, resolved []resolver.ResolvedClaim, embeddings [][]float32) error {
	for i, rc := range resolved {
		var emb []float32
		if i < len(embeddings) {
			emb = embeddings[i]
		}
		if err := s.InsertResolvedClaim(ctx, runID, rc, emb); err != nil {
			return err
		}
	}
	return nil
}
