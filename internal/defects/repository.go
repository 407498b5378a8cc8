package defects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/inspector/pkg/cache"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/validation"
)

// DistributionNamespace is the cache namespace holding the distribution.
const DistributionNamespace = "distribution"

const distributionKey = "unresolved"

var repoErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

type repo struct {
	db         *sql.DB
	cache      cache.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a defect repository implementing the System interface.
func New(
	db *sql.DB,
	c cache.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cache:      c,
		logger:     logger.With("system", "defects"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*ListResult, error) {
	qb := filters.Apply(query.NewBuilder(projection, defaultSort...))

	var (
		total int
		items []Defect
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, args := qb.BuildCount()
		n, err := repository.Count(gctx, r.db, q, args)
		if err != nil {
			return fmt.Errorf("count defects: %w", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		q, args := qb.BuildPage(page.Offset(), page.Limit)
		rows, err := repository.QueryMany(gctx, r.db, q, args, scanDefect)
		if err != nil {
			return fmt.Errorf("query defects: %w", err)
		}
		items = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ListResult{
		Defects:    items,
		Pagination: pagination.New(total, page),
	}, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Defect, error) {
	d, err := r.find(ctx, r.db, id)
	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}
	return &d, nil
}

func (r *repo) find(ctx context.Context, q repository.Querier, id uuid.UUID) (Defect, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)
	return repository.QueryOne(ctx, q, stmt, args, scanDefect)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Defect, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		WITH d AS (
			INSERT INTO defects(id, product_id, defect_type, probability, image_url, production_line)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING *
		)
		SELECT %s FROM d LEFT JOIN public.products p ON p.id = d.product_id`,
		projection.Columns(),
	)

	args := []any{
		uuid.New(),
		cmd.ProductID,
		string(cmd.DefectType),
		cmd.Probability,
		cmd.ImageURL,
		string(cmd.ProductionLine),
	}

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDefect)
	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}

	r.cache.Invalidate(ctx, DistributionNamespace)
	r.logger.Info("defect created", "id", d.ID, "product_id", d.ProductID, "defect_type", d.DefectType)
	return &d, nil
}

func (r *repo) Resolve(ctx context.Context, id uuid.UUID, cmd ResolveCommand) (*Defect, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Defect, error) {
		var resolved bool
		err := tx.QueryRowContext(ctx,
			"SELECT resolved FROM defects WHERE id = $1 FOR UPDATE",
			id,
		).Scan(&resolved)
		if err != nil {
			return Defect{}, err
		}
		if resolved {
			return Defect{}, ErrAlreadyResolved
		}

		if err := repository.ExecExpectOne(ctx, tx, `
			UPDATE defects
			SET resolved = true,
				resolved_at = now(),
				resolved_by = COALESCE($2, resolved_by),
				updated_at = now()
			WHERE id = $1 AND resolved = false`,
			id, cmd.ResolvedBy,
		); err != nil {
			return Defect{}, err
		}

		return r.find(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return nil, err
		}
		return nil, repository.MapError(err, repoErrors)
	}

	r.cache.Invalidate(ctx, DistributionNamespace)
	r.logger.Info("defect resolved", "id", d.ID, "resolved_by", d.ResolvedBy)
	return &d, nil
}

func (r *repo) Distribution(ctx context.Context) ([]TypeCount, error) {
	var cached []TypeCount
	slot, hit := r.cache.Get(ctx, DistributionNamespace, distributionKey, &cached)
	if hit {
		return cached, nil
	}

	q, args := query.
		NewBuilder(projection).
		WhereEquals("Resolved", false).
		OrderBy(distributionSort...).
		BuildAggregate(distributionSelects, "DefectType")

	rows, err := repository.QueryMany(ctx, r.db, q, args, scanTypeCount)
	if err != nil {
		return nil, fmt.Errorf("aggregate defect distribution: %w", err)
	}

	r.cache.Set(ctx, slot, rows)
	return rows, nil
}
