package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

const (
	inventoryTable = "diamond_inventory"

	// recommendCandidateLimit bounds how many under-budget rows are pulled
	// for in-process scoring.
	recommendCandidateLimit = 200
)

// PostgresStore serves the diamond inventory from Postgres via bun.
type PostgresStore struct {
	db bun.IDB
}

func NewPostgresStore(db bun.IDB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Search(ctx context.Context, criteria *model.SearchCriteria) ([]model.Diamond, error) {
	var rows []model.Diamond

	q := s.db.NewSelect().
		Model(&rows).
		ModelTableExpr(inventoryTable + " AS d")

	q = applyRange(q, "d.carat", criteria.Carat)
	q = applyRange(q, "d.price", criteria.Price)
	q = applySet(q, "d.color", criteria.Color)
	q = applySet(q, "d.clarity", criteria.Clarity)
	q = applySet(q, "d.cut", criteria.Cut)
	q = applySet(q, "d.shape", criteria.Shape)

	if err := q.Order("price ASC").Limit(SearchLimit).Scan(ctx); err != nil {
		logx.Error().Err(err).Msg("catalog search query failed")
		return nil, errx.WrapPostgres(err)
	}
	return rows, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*model.Diamond, error) {
	var row model.Diamond

	err := s.db.NewSelect().
		Model(&row).
		ModelTableExpr(inventoryTable+" AS d").
		Where("d.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("diamond_id", id).Msg("catalog lookup query failed")
		return nil, errx.WrapPostgres(err)
	}
	return &row, nil
}

func (s *PostgresStore) Recommend(ctx context.Context, budget float64, prefs map[string]any) ([]model.Diamond, error) {
	var candidates []model.Diamond

	// Budget bounds the candidate set in SQL; preference scoring and the
	// final ranking happen in process so both store implementations share
	// one scoring contract.
	err := s.db.NewSelect().
		Model(&candidates).
		ModelTableExpr(inventoryTable+" AS d").
		Where("d.price <= ?", budget).
		Order("price ASC").
		Limit(recommendCandidateLimit).
		Scan(ctx)
	if err != nil {
		logx.Error().Err(err).Float64("budget", budget).Msg("catalog recommend query failed")
		return nil, errx.WrapPostgres(err)
	}

	return RankByScore(candidates, prefs, RecommendLimit), nil
}

func applyRange(q *bun.SelectQuery, column string, r *model.Range) *bun.SelectQuery {
	if r == nil {
		return q
	}
	if r.Min != nil {
		q = q.Where(column+" >= ?", *r.Min)
	}
	if r.Max != nil {
		q = q.Where(column+" <= ?", *r.Max)
	}
	return q
}

func applySet(q *bun.SelectQuery, column string, values []string) *bun.SelectQuery {
	if len(values) == 0 {
		return q
	}
	return q.Where(column+" IN (?)", bun.In(values))
}

var _ Store = (*PostgresStore)(nil)
