package products_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/pgtest"
	"github.com/JaimeStill/inspector/internal/products"
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/cache"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

var pageConfig = pagination.Config{DefaultLimit: 50, MaxLimit: 100}

func createProduct(t *testing.T, sys products.System, line quality.Line, status quality.Status, prob *float64, inspection int64) *products.Product {
	t.Helper()

	cmd := products.CreateCommand{
		ProductionLine:    line,
		ProductName:       "PROD-" + line.Prefix() + "-" + uuid.NewString()[:8],
		Status:            status,
		ImageURL:          "https://images.example.com/inspections/" + string(line) + "/part.jpg",
		DefectProbability: prob,
		InspectionTime:    inspection,
	}
	if status == quality.StatusRejected {
		cmd.DefectType = new(quality.DefectCrack)
	}

	p, err := sys.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func ids(items []products.Product) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestRepository(t *testing.T) {
	db := pgtest.New(t)
	sys := products.New(db, cache.Noop(), pgtest.Logger(), pageConfig)
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		pgtest.Reset(t, db)

		created, err := sys.Create(ctx, products.CreateCommand{
			ProductionLine: quality.LineQC,
			ProductName:    "PROD-qc-ABC123",
			ImageURL:       "https://images.example.com/qc.png",
			InspectionTime: 42,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.Status != quality.StatusPending {
			t.Errorf("status = %s, want pending default", created.Status)
		}
		if created.DefectProbability != nil || created.DefectType != nil {
			t.Errorf("defect fields = %v, %v, want nil", created.DefectProbability, created.DefectType)
		}

		found, err := sys.Find(ctx, created.ID)
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if found.ProductName != "PROD-qc-ABC123" || found.InspectionTime != 42 || !found.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("found = %+v", found)
		}
	})

	t.Run("find unknown", func(t *testing.T) {
		if _, err := sys.Find(ctx, uuid.New()); !errors.Is(err, products.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("pages reproduce the full list", func(t *testing.T) {
		pgtest.Reset(t, db)

		var last *products.Product
		for range 5 {
			last = createProduct(t, sys, quality.LineAssembly, quality.StatusApproved, new(0.1), 100)
		}

		full, err := sys.List(ctx, pagination.PageRequest{Page: 1, Limit: 100}, products.Filters{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(full.Products) != 5 || full.Pagination.Total != 5 {
			t.Fatalf("full list = %d items, total %d", len(full.Products), full.Pagination.Total)
		}
		if full.Products[0].ID != last.ID {
			t.Error("list should be newest first")
		}

		second, err := sys.List(ctx, pagination.PageRequest{Page: 2, Limit: 1}, products.Filters{})
		if err != nil {
			t.Fatalf("List page 2: %v", err)
		}
		if len(second.Products) != 1 || second.Products[0].ID != full.Products[1].ID {
			t.Errorf("limit=1&page=2 = %v, want %v", ids(second.Products), full.Products[1].ID)
		}
		want := pagination.Pagination{Total: 5, Page: 2, Limit: 1, TotalPages: 5}
		if second.Pagination != want {
			t.Errorf("pagination = %+v, want %+v", second.Pagination, want)
		}

		var joined []uuid.UUID
		for page := 1; page <= 3; page++ {
			res, err := sys.List(ctx, pagination.PageRequest{Page: page, Limit: 2}, products.Filters{})
			if err != nil {
				t.Fatalf("List page %d: %v", page, err)
			}
			joined = append(joined, ids(res.Products)...)
		}
		if !slices.Equal(joined, ids(full.Products)) {
			t.Errorf("concatenated pages = %v, want %v", joined, ids(full.Products))
		}

		past, err := sys.List(ctx, pagination.PageRequest{Page: 4, Limit: 2}, products.Filters{})
		if err != nil {
			t.Fatalf("List past end: %v", err)
		}
		if len(past.Products) != 0 || past.Pagination.Total != 5 {
			t.Errorf("past end = %d items, total %d", len(past.Products), past.Pagination.Total)
		}
	})

	t.Run("list filters", func(t *testing.T) {
		pgtest.Reset(t, db)

		createProduct(t, sys, quality.LineAssembly, quality.StatusApproved, new(0.1), 100)
		rejected := createProduct(t, sys, quality.LineAssembly, quality.StatusRejected, new(0.9), 100)
		createProduct(t, sys, quality.LineQC, quality.StatusRejected, new(0.8), 100)

		line, status := "assembly-1", "rejected"
		res, err := sys.List(ctx, pagination.PageRequest{Page: 1, Limit: 50}, products.Filters{Line: &line, Status: &status})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if res.Pagination.Total != 1 || len(res.Products) != 1 || res.Products[0].ID != rejected.ID {
			t.Errorf("filtered = %v, total %d", ids(res.Products), res.Pagination.Total)
		}
		if dt := res.Products[0].DefectType; dt == nil || *dt != quality.DefectCrack {
			t.Errorf("defectType = %v, want crack", dt)
		}
	})

	t.Run("stats", func(t *testing.T) {
		pgtest.Reset(t, db)

		createProduct(t, sys, quality.LineAssembly, quality.StatusApproved, new(0.1), 100)
		createProduct(t, sys, quality.LineAssembly, quality.StatusRejected, new(0.9), 300)
		createProduct(t, sys, quality.LineAssembly, quality.StatusPending, nil, 200)
		createProduct(t, sys, quality.LinePackaging, quality.StatusApproved, new(0.2), 50)

		stats, err := sys.Stats(ctx, products.StatsFilters{})
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		if len(stats.ByProductionLine) != 2 {
			t.Fatalf("lines = %+v", stats.ByProductionLine)
		}

		assembly := stats.ByProductionLine[0]
		wantAssembly := products.LineStats{
			ProductionLine:       quality.LineAssembly,
			Total:                3,
			Approved:             1,
			Rejected:             1,
			Pending:              1,
			AvgInspectionTime:    200,
			AvgDefectProbability: 0.33,
		}
		if assembly != wantAssembly {
			t.Errorf("assembly = %+v, want %+v", assembly, wantAssembly)
		}
		if packaging := stats.ByProductionLine[1]; packaging.ProductionLine != quality.LinePackaging || packaging.AvgDefectProbability != 0.2 {
			t.Errorf("packaging = %+v", packaging)
		}

		o := stats.Overall
		if o.Total != 4 || o.ApprovalRate != "50.00" || o.RejectionRate != "25.00" {
			t.Errorf("overall = %+v", o)
		}

		line := "packaging-2"
		filtered, err := sys.Stats(ctx, products.StatsFilters{ProductionLine: &line})
		if err != nil {
			t.Fatalf("Stats filtered: %v", err)
		}
		if len(filtered.ByProductionLine) != 1 || filtered.Overall.Total != 1 {
			t.Errorf("filtered = %+v", filtered)
		}

		future := time.Now().Add(24 * time.Hour)
		empty, err := sys.Stats(ctx, products.StatsFilters{DateFrom: &future})
		if err != nil {
			t.Fatalf("Stats empty: %v", err)
		}
		if len(empty.ByProductionLine) != 0 || empty.Overall.Total != 0 || empty.Overall.ApprovalRate != "0" {
			t.Errorf("empty = %+v", empty)
		}
	})
}
