package inspection_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/inspection"
	"github.com/JaimeStill/inspector/internal/products"
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/lifecycle"
	"github.com/JaimeStill/inspector/pkg/validation"
)

type fakeStore struct {
	keys        []string
	contentType string
	err         error
}

func (s *fakeStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *fakeStore) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	io.Copy(io.Discard, r)
	s.keys = append(s.keys, key)
	s.contentType = contentType
	return s.URL(key), nil
}

func (s *fakeStore) URL(key string) string { return "https://images.example.com/" + key }

type fakeClassifier struct {
	pred  classifier.Prediction
	err   error
	calls int
}

func (c *fakeClassifier) Start(*lifecycle.Coordinator) error { return nil }

func (c *fakeClassifier) Classify(context.Context, []byte) (*classifier.Prediction, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	p := c.pred
	return &p, nil
}

func (c *fakeClassifier) Status() classifier.Status { return classifier.Status{Loaded: true} }

type fakeProducts struct {
	created []products.CreateCommand
	err     error
}

func (f *fakeProducts) Create(_ context.Context, cmd products.CreateCommand) (*products.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	f.created = append(f.created, cmd)
	return &products.Product{
		ID:                uuid.New(),
		ProductionLine:    cmd.ProductionLine,
		ProductName:       cmd.ProductName,
		Status:            cmd.Status,
		ImageURL:          cmd.ImageURL,
		DefectProbability: cmd.DefectProbability,
		DefectType:        cmd.DefectType,
		InspectionTime:    cmd.InspectionTime,
	}, nil
}

type fakeDefects struct {
	created []defects.CreateCommand
	err     error
}

func (f *fakeDefects) Create(_ context.Context, cmd defects.CreateCommand) (*defects.Defect, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, cmd)
	return &defects.Defect{ID: uuid.New(), ProductID: cmd.ProductID, DefectType: cmd.DefectType}, nil
}

type fixture struct {
	store      *fakeStore
	classifier *fakeClassifier
	products   *fakeProducts
	defects    *fakeDefects
	spans      *tracetest.SpanRecorder
	sys        inspection.System
}

func newFixture(scores ...classifier.Score) *fixture {
	return newFixtureWithLimit(0, scores...)
}

func newFixtureWithLimit(maxImageSize int64, scores ...classifier.Score) *fixture {
	f := &fixture{
		store:      &fakeStore{},
		classifier: &fakeClassifier{pred: classifier.Interpret(scores)},
		products:   &fakeProducts{},
		defects:    &fakeDefects{},
		spans:      tracetest.NewSpanRecorder(),
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	f.sys = inspection.New(inspection.Deps{
		Storage:    f.store,
		Classifier: f.classifier,
		Products:   f.products,
		Defects:    f.defects,
		Tracer:     tp.Tracer("test"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, maxImageSize)
	return f
}

func validCommand() inspection.Command {
	return inspection.Command{
		Image:       []byte("\xff\xd8\xff\xe0fake-jpeg"),
		ContentType: "image/jpeg",
		Filename:    "part.jpg",
		Line:        "assembly-1",
	}
}

func TestInspectApproved(t *testing.T) {
	f := newFixture(
		classifier.Score{Type: "normal", Probability: 0.95},
		classifier.Score{Type: "crack", Probability: 0.03},
	)

	result, err := f.sys.Inspect(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if !result.Success || result.Status != quality.StatusApproved {
		t.Errorf("result = %+v", result)
	}
	if result.DefectType != nil {
		t.Errorf("defectType = %v, want nil", *result.DefectType)
	}
	if result.Probability != 0 || result.Confidence != 95 {
		t.Errorf("probability/confidence = %v/%v", result.Probability, result.Confidence)
	}
	if result.DefectID != nil || len(f.defects.created) != 0 {
		t.Error("approved item should not create a defect")
	}
	if !strings.HasPrefix(result.ProductName, "PROD-assembly-") {
		t.Errorf("productName = %q", result.ProductName)
	}
	if result.Debug == nil || result.Debug.Threshold != quality.RejectionThreshold {
		t.Errorf("debug = %+v", result.Debug)
	}

	created := f.products.created[0]
	if created.DefectProbability != nil || created.DefectType != nil {
		t.Errorf("product defect fields should be empty: %+v", created)
	}
}

func TestInspectRejected(t *testing.T) {
	f := newFixture(
		classifier.Score{Type: "normal", Probability: 0.05},
		classifier.Score{Type: "crack", Probability: 0.92},
	)

	result, err := f.sys.Inspect(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if result.Status != quality.StatusRejected {
		t.Errorf("status = %s, want rejected", result.Status)
	}
	if result.DefectType == nil || *result.DefectType != quality.DefectCrack {
		t.Errorf("defectType = %v", result.DefectType)
	}
	if result.Probability != 0.92 || result.Confidence != 92 {
		t.Errorf("probability/confidence = %v/%v", result.Probability, result.Confidence)
	}
	if result.DefectID == nil || result.Partial {
		t.Errorf("defect should be recorded: %+v", result)
	}

	if len(f.defects.created) != 1 {
		t.Fatalf("defects created = %d, want 1", len(f.defects.created))
	}
	d := f.defects.created[0]
	if d.ProductID != result.ProductID || d.ImageURL != result.ImageURL || d.ProductionLine != quality.LineAssembly {
		t.Errorf("defect command = %+v", d)
	}

	p := f.products.created[0]
	if p.DefectType == nil || *p.DefectType != quality.DefectCrack || p.DefectProbability == nil {
		t.Errorf("product command = %+v", p)
	}
}

func TestInspectThresholdNotRejected(t *testing.T) {
	f := newFixture(classifier.Score{Type: "dent", Probability: 0.75})

	result, err := f.sys.Inspect(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if result.Status != quality.StatusApproved {
		t.Errorf("status = %s, want approved at exactly the threshold", result.Status)
	}
	if result.DefectType == nil || *result.DefectType != quality.DefectDent {
		t.Errorf("defectType = %v, want dent", result.DefectType)
	}
	if len(f.defects.created) != 0 {
		t.Error("no defect should be created for an approved item")
	}
	if p := f.products.created[0]; p.DefectType != nil || p.DefectProbability == nil {
		t.Errorf("product command = %+v", p)
	}
}

func TestInspectUncertain(t *testing.T) {
	f := newFixture(
		classifier.Score{Type: "normal", Probability: 0.5},
		classifier.Score{Type: "scratch", Probability: 0.5},
	)

	result, err := f.sys.Inspect(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.Status != quality.StatusApproved || result.Probability != 0.3 || result.Confidence != 30 {
		t.Errorf("result = %+v", result)
	}
}

func TestInspectPartialSuccess(t *testing.T) {
	f := newFixture(classifier.Score{Type: "scratch", Probability: 0.88})
	f.defects.err = errors.New("deadlock detected")

	result, err := f.sys.Inspect(context.Background(), validCommand())
	if err != nil {
		t.Fatalf("Inspect should succeed partially: %v", err)
	}

	if !result.Success || !result.Partial {
		t.Errorf("result = %+v, want partial success", result)
	}
	if result.Warning != inspection.ErrDefectNotRecorded.Error() {
		t.Errorf("warning = %q", result.Warning)
	}
	if result.DefectID != nil {
		t.Error("defectId should be absent")
	}
	if len(f.products.created) != 1 {
		t.Error("product should be kept")
	}

	var found bool
	for _, span := range f.spans.Ended() {
		if span.Name() != "inspection.inspect" {
			continue
		}
		for _, ev := range span.Events() {
			if ev.Name == "defect.partial" {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected defect.partial event on the inspection span")
	}
}

func TestInspectFailures(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		f := newFixture(classifier.Score{Type: "normal", Probability: 0.9})
		f.store.err = errors.New("403 forbidden")

		_, err := f.sys.Inspect(context.Background(), validCommand())
		if !errors.Is(err, inspection.ErrUploadFailed) {
			t.Fatalf("error = %v, want ErrUploadFailed", err)
		}
		if f.classifier.calls != 0 || len(f.products.created) != 0 {
			t.Error("pipeline should stop after upload failure")
		}
	})

	t.Run("classify", func(t *testing.T) {
		f := newFixture()
		f.classifier.err = classifier.ErrNotLoaded

		_, err := f.sys.Inspect(context.Background(), validCommand())
		if !errors.Is(err, inspection.ErrClassificationFailed) || !errors.Is(err, classifier.ErrNotLoaded) {
			t.Fatalf("error = %v", err)
		}
		if len(f.store.keys) != 1 {
			t.Error("image should have been uploaded before classification")
		}
		if len(f.products.created) != 0 {
			t.Error("no product should be persisted")
		}
		if got := inspection.MapHTTPStatus(err); got != 500 {
			t.Errorf("status = %d, want 500", got)
		}
	})

	t.Run("product", func(t *testing.T) {
		f := newFixture(classifier.Score{Type: "crack", Probability: 0.9})
		f.products.err = validation.Field("image_url", "new row violates check constraint")

		_, err := f.sys.Inspect(context.Background(), validCommand())
		if got := inspection.MapHTTPStatus(err); got != 400 {
			t.Errorf("status = %d, want 400 for persistence validation", got)
		}
		if len(f.defects.created) != 0 {
			t.Error("defect should not be created without a product")
		}
	})
}

func TestInspectValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		edit func(*inspection.Command)
		want error
	}{
		{"no image", func(c *inspection.Command) { c.Image = nil; c.Line = "" }, inspection.ErrNoImage},
		{"missing line", func(c *inspection.Command) { c.Line = ""; c.ContentType = "text/plain" }, inspection.ErrMissingLine},
		{"unknown line", func(c *inspection.Command) { c.Line = "assembly-2"; c.ContentType = "text/plain" }, quality.ErrInvalidLine},
		{"bad type", func(c *inspection.Command) { c.ContentType = "image/gif" }, inspection.ErrInvalidType},
		{"too large", func(c *inspection.Command) { c.Image = make([]byte, inspection.DefaultMaxImageSize+1) }, inspection.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			cmd := validCommand()
			tt.edit(&cmd)

			_, err := f.sys.Inspect(context.Background(), cmd)
			if !errors.Is(err, tt.want) || !errors.Is(err, validation.ErrInvalid) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if len(f.store.keys) != 0 {
				t.Error("invalid input should not reach storage")
			}
			if len(f.spans.Ended()) != 0 {
				t.Error("invalid input should not start spans")
			}
		})
	}
}

func TestInspectStorageKey(t *testing.T) {
	f := newFixture(classifier.Score{Type: "normal", Probability: 0.9})
	cmd := validCommand()
	cmd.ContentType = "image/png; charset=binary"
	cmd.Line = "qc-3"

	if _, err := f.sys.Inspect(context.Background(), cmd); err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	key := f.store.keys[0]
	if !strings.HasPrefix(key, "inspections/qc-3/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q", key)
	}
	if f.store.contentType != "image/png" {
		t.Errorf("content type = %q", f.store.contentType)
	}
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("6f1c2b7e-3f4a-4d2b-9c1e-2a3b4c5d6e7f")
	cmd := inspection.Command{Line: "packaging-2", ContentType: "image/webp"}

	want := "inspections/packaging-2/6f1c2b7e-3f4a-4d2b-9c1e-2a3b4c5d6e7f.webp"
	if got := cmd.StorageKey(id); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInspectLimitCappedAtClassifierMax(t *testing.T) {
	f := newFixtureWithLimit(20<<20, classifier.Score{Type: "normal", Probability: 0.9})
	cmd := validCommand()
	cmd.Image = make([]byte, 15<<20)

	_, err := f.sys.Inspect(context.Background(), cmd)
	if !errors.Is(err, inspection.ErrTooLarge) {
		t.Fatalf("error = %v, want ErrTooLarge", err)
	}
	if len(f.store.keys) != 0 || f.classifier.calls != 0 {
		t.Error("oversized image should be rejected before upload")
	}
}
