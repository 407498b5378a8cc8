package inspection

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/internal/defects"
	"github.com/JaimeStill/inspector/internal/products"
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// Deps are the collaborators of the pipeline. Tracer may be nil.
type Deps struct {
	Storage    storage.System
	Classifier classifier.System
	Products   ProductWriter
	Defects    DefectWriter
	Tracer     trace.Tracer
	Logger     *slog.Logger
}

type pipeline struct {
	store        storage.System
	classifier   classifier.System
	products     ProductWriter
	defects      DefectWriter
	tracer       trace.Tracer
	logger       *slog.Logger
	maxImageSize int64
	now          func() time.Time
}

// New creates the inspection System. maxImageSize <= 0 uses DefaultMaxImageSize,
// and larger values are capped at it.
func New(deps Deps, maxImageSize int64) System {
	if maxImageSize <= 0 || maxImageSize > DefaultMaxImageSize {
		maxImageSize = DefaultMaxImageSize
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("inspection")
	}
	return &pipeline{
		store:        deps.Storage,
		classifier:   deps.Classifier,
		products:     deps.Products,
		defects:      deps.Defects,
		tracer:       tracer,
		logger:       deps.Logger.With("system", "inspection"),
		maxImageSize: maxImageSize,
		now:          time.Now,
	}
}

func (p *pipeline) Handler(maxUploadSize int64, verbose bool) *Handler {
	return NewHandler(p, p.logger, maxUploadSize, verbose)
}

func (p *pipeline) Inspect(ctx context.Context, cmd Command) (*Result, error) {
	start := p.now()

	if err := cmd.Validate(p.maxImageSize); err != nil {
		return nil, err
	}
	line := quality.Line(cmd.Line)

	ctx, span := p.tracer.Start(ctx, "inspection.inspect", trace.WithAttributes(
		attribute.String("inspection.line", cmd.Line),
		attribute.Int("inspection.image_bytes", len(cmd.Image)),
	))
	defer span.End()

	imageURL, err := p.upload(ctx, cmd)
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	pred, err := p.classify(ctx, cmd.Image)
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	status := quality.Decide(pred.Probability)
	recordDefect := status == quality.StatusRejected && pred.DefectType.Persistable()
	finished := p.now()

	create := products.CreateCommand{
		ProductionLine: line,
		ProductName:    quality.ProductName(line, finished),
		Status:         status,
		ImageURL:       imageURL,
		InspectionTime: finished.Sub(start).Milliseconds(),
	}
	if pred.DefectType != quality.DefectNone {
		prob := pred.Probability
		create.DefectProbability = &prob
	}
	if recordDefect {
		dt := pred.DefectType
		create.DefectType = &dt
	}

	product, err := p.persistProduct(ctx, create)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	result := &Result{
		Success:        true,
		ProductID:      product.ID,
		Status:         product.Status,
		Probability:    quality.Round2(pred.Probability),
		Confidence:     quality.Round2(pred.Confidence),
		ImageURL:       product.ImageURL,
		InspectionTime: product.InspectionTime,
		ProductName:    product.ProductName,
		ProductionLine: product.ProductionLine,
		Timestamp:      finished.UTC(),
		Debug: &Debug{
			AllPredictions: pred.Scores,
			Threshold:      pred.Threshold,
		},
	}
	if pred.DefectType != quality.DefectNone {
		dt := pred.DefectType
		result.DefectType = &dt
	}

	if recordDefect {
		defect, err := p.persistDefect(ctx, defects.CreateCommand{
			ProductID:      product.ID,
			DefectType:     pred.DefectType,
			Probability:    pred.Probability,
			ImageURL:       product.ImageURL,
			ProductionLine: product.ProductionLine,
		})
		if err != nil {
			p.logger.Error("defect record failed",
				"product_id", product.ID,
				"defect_type", pred.DefectType,
				"error", err,
			)
			span.AddEvent("defect.partial", trace.WithAttributes(attribute.String("error", err.Error())))
			result.Partial = true
			result.Warning = ErrDefectNotRecorded.Error()
		} else {
			result.DefectID = &defect.ID
		}
	}

	span.SetAttributes(
		attribute.String("inspection.status", string(result.Status)),
		attribute.String("inspection.product_id", result.ProductID.String()),
	)

	p.logger.Info("inspection complete",
		"product_id", result.ProductID,
		"line", result.ProductionLine,
		"status", result.Status,
		"defect_type", pred.DefectType,
		"probability", result.Probability,
		"partial", result.Partial,
		"duration_ms", result.InspectionTime,
	)

	return result, nil
}

func (p *pipeline) upload(ctx context.Context, cmd Command) (string, error) {
	ctx, span := p.tracer.Start(ctx, "inspection.upload")
	defer span.End()

	key := cmd.StorageKey(uuid.New())
	span.SetAttributes(attribute.String("storage.key", key))

	url, err := p.store.Upload(ctx, key, bytes.NewReader(cmd.Image), mediaType(cmd.ContentType))
	if err != nil {
		fail(span, err)
		return "", err
	}
	return url, nil
}

func (p *pipeline) classify(ctx context.Context, image []byte) (*classifier.Prediction, error) {
	ctx, span := p.tracer.Start(ctx, "inspection.classify")
	defer span.End()

	pred, err := p.classifier.Classify(ctx, image)
	if err != nil {
		fail(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("classifier.defect_type", string(pred.DefectType)),
		attribute.Float64("classifier.probability", pred.Probability),
	)
	return pred, nil
}

func (p *pipeline) persistProduct(ctx context.Context, cmd products.CreateCommand) (*products.Product, error) {
	ctx, span := p.tracer.Start(ctx, "inspection.persist.product")
	defer span.End()

	product, err := p.products.Create(ctx, cmd)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	return product, nil
}

func (p *pipeline) persistDefect(ctx context.Context, cmd defects.CreateCommand) (*defects.Defect, error) {
	ctx, span := p.tracer.Start(ctx, "inspection.persist.defect")
	defer span.End()

	defect, err := p.defects.Create(ctx, cmd)
	if err != nil {
		fail(span, err)
		return nil, err
	}
	return defect, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
