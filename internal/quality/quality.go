// Package quality holds the vocabulary shared by products, defects and the
// inspection pipeline: production lines, inspection statuses, defect types,
// the rejection threshold and product naming.
package quality

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RejectionThreshold is the probability above which a product is rejected.
const RejectionThreshold = 0.75

// Line identifies a physical inspection station.
type Line string

const (
	LineAssembly  Line = "assembly-1"
	LinePackaging Line = "packaging-2"
	LineQC        Line = "qc-3"
)

// Lines lists every production line in display order.
var Lines = []Line{LineAssembly, LinePackaging, LineQC}

// Valid reports whether l is a known production line.
func (l Line) Valid() bool {
	switch l {
	case LineAssembly, LinePackaging, LineQC:
		return true
	}
	return false
}

// Prefix returns the text before the first dash, e.g. "assembly".
func (l Line) Prefix() string {
	prefix, _, _ := strings.Cut(string(l), "-")
	return prefix
}

// ParseLine validates s as a production line.
func ParseLine(s string) (Line, error) {
	l := Line(s)
	if !l.Valid() {
		return "", ErrInvalidLine
	}
	return l, nil
}

// Status is the inspection outcome of a product.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus validates s as a product status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// DefectType is a classification label for a visual flaw.
type DefectType string

const (
	DefectCrack         DefectType = "crack"
	DefectScratch       DefectType = "scratch"
	DefectDent          DefectType = "dent"
	DefectDeformation   DefectType = "deformation"
	DefectDiscoloration DefectType = "discoloration"
	DefectNone          DefectType = "none"
)

// DefectTypes lists the persistable defect types.
var DefectTypes = []DefectType{
	DefectCrack,
	DefectScratch,
	DefectDent,
	DefectDeformation,
	DefectDiscoloration,
}

// Valid reports whether d is a known label, including none.
func (d DefectType) Valid() bool {
	return d == DefectNone || d.Persistable()
}

// Persistable reports whether a Defect record may carry d.
func (d DefectType) Persistable() bool {
	switch d {
	case DefectCrack, DefectScratch, DefectDent, DefectDeformation, DefectDiscoloration:
		return true
	}
	return false
}

// ParseDefectType validates s as a persistable defect type. "none" is rejected.
func ParseDefectType(s string) (DefectType, error) {
	d := DefectType(s)
	if !d.Persistable() {
		return "", ErrInvalidDefectType
	}
	return d, nil
}

// Decide maps a classifier probability onto an inspection status.
// The comparison is strict and applies to every label, none included.
func Decide(probability float64) Status {
	if probability > RejectionThreshold {
		return StatusRejected
	}
	return StatusApproved
}

// ProductName returns PROD-<line prefix>-<base-36 milliseconds, upper case>.
func ProductName(line Line, t time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
	return "PROD-" + line.Prefix() + "-" + ts
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Percent returns part/total*100 with two decimals, or "0" when total is zero.
func Percent(part, total int) string {
	if total == 0 {
		return "0"
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2).
		StringFixed(2)
}
