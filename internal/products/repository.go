package products

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/cache"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
	"github.com/JaimeStill/inspector/pkg/validation"
)

// StatsNamespace is the cache namespace holding statistics reports.
const StatsNamespace = "stats"

var repoErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

type repo struct {
	db         *sql.DB
	cache      cache.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a product repository implementing the System interface.
func New(
	db *sql.DB,
	c cache.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cache:      c,
		logger:     logger.With("system", "products"),
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
		items []Product
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, args := qb.BuildCount()
		n, err := repository.Count(gctx, r.db, q, args)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		q, args := qb.BuildPage(page.Offset(), page.Limit)
		rows, err := repository.QueryMany(gctx, r.db, q, args, scanProduct)
		if err != nil {
			return fmt.Errorf("query products: %w", err)
		}
		items = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ListResult{
		Products:   items,
		Pagination: pagination.New(total, page),
	}, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Product, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProduct)
	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Product, error) {
	if cmd.Status == "" {
		cmd.Status = quality.StatusPending
	}
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO products(id, production_line, product_name, status, image_url, defect_probability, defect_type, inspection_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + returning

	var defectType *string
	if cmd.DefectType != nil {
		s := string(*cmd.DefectType)
		defectType = &s
	}

	args := []any{
		uuid.New(),
		string(cmd.ProductionLine),
		cmd.ProductName,
		string(cmd.Status),
		cmd.ImageURL,
		cmd.DefectProbability,
		defectType,
		cmd.InspectionTime,
	}

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProduct)
	if err != nil {
		return nil, repository.MapError(err, repoErrors)
	}

	r.cache.Invalidate(ctx, StatsNamespace)
	r.logger.Info("product created", "id", p.ID, "name", p.ProductName, "status", p.Status)
	return &p, nil
}

func (r *repo) Stats(ctx context.Context, filters StatsFilters) (*Stats, error) {
	key := filters.CacheKey()

	var cached Stats
	slot, hit := r.cache.Get(ctx, StatsNamespace, key, &cached)
	if hit {
		return &cached, nil
	}

	q, args := filters.
		Apply(query.NewBuilder(projection)).
		OrderBy(query.SortField{Field: "ProductionLine"}).
		BuildAggregate(statsSelects, "ProductionLine")

	rows, err := repository.QueryMany(ctx, r.db, q, args, scanLineStats)
	if err != nil {
		return nil, fmt.Errorf("aggregate product stats: %w", err)
	}

	stats := NewStats(rows)
	r.cache.Set(ctx, slot, stats)
	return &stats, nil
}
