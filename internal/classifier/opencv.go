//go:build gocv

package classifier

import (
	"context"
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/JaimeStill/inspector/internal/quality"
)

// opencv scores images with an edge and contour heuristic: elongated flaws
// count toward scratch, compact ones toward dent.
type opencv struct {
	cfg OpenCVConfig
}

func newOpenCV(cfg OpenCVConfig) *opencv {
	return &opencv{cfg: cfg}
}

func (o *opencv) load(context.Context) error {
	if gocv.OpenCVVersion() == "" {
		return errors.New("opencv runtime unavailable")
	}
	return nil
}

func (o *opencv) predict(_ context.Context, data []byte) ([]Score, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if err == nil {
			mat.Close()
		}
		return nil, errors.New("failed to decode image")
	}
	defer mat.Close()

	if mat.Cols() > o.cfg.MaxSide || mat.Rows() > o.cfg.MaxSide {
		scale := float64(o.cfg.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(int(float64(mat.Cols())*scale), int(float64(mat.Rows())*scale)), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	total := float64(mat.Cols() * mat.Rows())
	minArea := int(total * o.cfg.MinAreaRatio)

	var scratchArea, dentArea int
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		w, h := rect.Dx(), rect.Dy()
		area := w * h
		if area < minArea || w == 0 || h == 0 {
			continue
		}

		aspect := float64(max(w, h)) / float64(min(w, h))
		if aspect >= o.cfg.ScratchAspect {
			scratchArea += area
		} else {
			dentArea += area
		}
	}

	return coverageScores(
		float64(scratchArea)/total,
		float64(dentArea)/total,
		o.cfg.Sensitivity,
	), nil
}

func (o *opencv) close() error { return nil }

func coverageScores(scratch, dent, sensitivity float64) []Score {
	ps := min(scratch*sensitivity, 1)
	pd := min(dent*sensitivity, 1)
	return []Score{
		{Type: normalClass, Probability: 1 - max(ps, pd)},
		{Type: string(quality.DefectScratch), Probability: ps},
		{Type: string(quality.DefectDent), Probability: pd},
	}
}
