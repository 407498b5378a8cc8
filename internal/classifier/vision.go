package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/JaimeStill/inspector/internal/quality"
)

// labelKeywords maps Cloud Vision label fragments onto defect types.
var labelKeywords = map[quality.DefectType][]string{
	quality.DefectCrack:         {"crack", "fracture", "split"},
	quality.DefectScratch:       {"scratch", "scrape", "abrasion"},
	quality.DefectDent:          {"dent", "ding"},
	quality.DefectDeformation:   {"deform", "bent", "warp", "bend"},
	quality.DefectDiscoloration: {"discolor", "stain", "rust", "corrosion"},
}

// cloudVision classifies with Cloud Vision label detection.
type cloudVision struct {
	cfg    VisionConfig
	client *vision.ImageAnnotatorClient
}

func newVision(cfg VisionConfig) *cloudVision {
	return &cloudVision{cfg: cfg}
}

func (v *cloudVision) load(ctx context.Context) error {
	var opts []option.ClientOption
	switch {
	case v.cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(v.cfg.CredentialsJSON)))
	case v.cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(v.cfg.CredentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("vision client: %w", err)
	}
	v.client = client
	return nil
}

func (v *cloudVision) predict(ctx context.Context, image []byte) ([]Score, error) {
	if v.client == nil {
		return nil, ErrNotLoaded
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: image},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: v.cfg.MaxResults},
			},
		}},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, errors.New("vision returned no responses")
	}

	r := resp.GetResponses()[0]
	if e := r.GetError(); e != nil && e.GetMessage() != "" {
		return nil, fmt.Errorf("vision: %s", e.GetMessage())
	}

	labels := make(map[string]float64, len(r.GetLabelAnnotations()))
	for _, a := range r.GetLabelAnnotations() {
		labels[a.GetDescription()] = float64(a.GetScore())
	}
	return scoresFromLabels(labels), nil
}

func (v *cloudVision) close() error {
	if v.client == nil {
		return nil
	}
	return v.client.Close()
}

// scoresFromLabels keeps the strongest label per defect type and reports
// normal as the complement of the strongest defect.
func scoresFromLabels(labels map[string]float64) []Score {
	best := make(map[quality.DefectType]float64)
	for desc, score := range labels {
		desc = strings.ToLower(desc)
		for dt, words := range labelKeywords {
			for _, w := range words {
				if strings.Contains(desc, w) && score > best[dt] {
					best[dt] = score
				}
			}
		}
	}

	var strongest float64
	scores := make([]Score, 0, len(quality.DefectTypes)+1)
	for _, dt := range quality.DefectTypes {
		p := best[dt]
		strongest = max(strongest, p)
		scores = append(scores, Score{Type: string(dt), Probability: p})
	}

	return append([]Score{{Type: normalClass, Probability: 1 - strongest}}, scores...)
}
