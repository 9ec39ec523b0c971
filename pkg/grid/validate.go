package grid

import (
	"fmt"
	"strings"

	"github.com/chazu/ugrid/pkg/offsets"
)

// Severity tells whether a validation finding blocks a write.
type Severity int

const (
	SeverityError   Severity = iota // blocks the write
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding is one validation result about a payload buffer.
type Finding struct {
	Field    string // payload field the finding is about
	Index    int64  // first offending entry, -1 when the whole field is at fault
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Index < 0 {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Field, f.Message)
	}
	return fmt.Sprintf("[%s] %s[%d]: %s", f.Severity, f.Field, f.Index, f.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err folds the errors into one error wrapping ErrInvalidArgument, or nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, f := range r.Errors {
		msgs[i] = f.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(msgs, "; "))
}

func (r *ValidationResult) fail(field string, index int64, format string, args ...any) {
	r.Errors = append(r.Errors, Finding{Field: field, Index: index, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (r *ValidationResult) warn(field string, index int64, format string, args ...any) {
	r.Warnings = append(r.Warnings, Finding{Field: field, Index: index, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// topology is the layout-independent form both payload kinds are checked in.
type topology struct {
	cellCount, faceCount, pointCount uint64
	cells, faces                     Layout
	faceIndices, nodeIndices         []uint64
	rightHanded                      []uint8
	points                           []float64
}

// ValidateGeometry checks a variable-shape payload against cellCount.
// Missing buffers are reported as errors rather than panicking.
func ValidateGeometry(cellCount uint64, g *Geometry) ValidationResult {
	var r ValidationResult
	if err := g.requireBuffers(); err != nil {
		r.fail("geometry", -1, "%s", strings.TrimPrefix(err.Error(), ErrInvalidArgument.Error()+": "))
		return r
	}
	checkCumulative(&r, "FaceIndicesCumulativeCountPerCell", g.FaceIndicesCumulativeCountPerCell, cellCount, "cell")
	checkCumulative(&r, "NodeIndicesCumulativeCountPerFace", g.NodeIndicesCumulativeCountPerFace, g.FaceCount, "face")
	if !r.OK() {
		return r
	}
	validateTopology(&r, topology{
		cellCount:   cellCount,
		faceCount:   g.FaceCount,
		pointCount:  g.PointCount,
		cells:       CumulativeLayout(g.FaceIndicesCumulativeCountPerCell),
		faces:       CumulativeLayout(g.NodeIndicesCumulativeCountPerFace),
		faceIndices: g.FaceIndicesPerCell,
		nodeIndices: g.NodeIndicesPerFace,
		rightHanded: g.CellFaceIsRightHanded,
		points:      g.Points,
	})
	return r
}

// ValidateConstantGeometry checks a constant-shape payload against cellCount.
func ValidateConstantGeometry(cellCount uint64, g *ConstantGeometry) ValidationResult {
	var r ValidationResult
	if err := g.requireBuffers(); err != nil {
		r.fail("geometry", -1, "%s", strings.TrimPrefix(err.Error(), ErrInvalidArgument.Error()+": "))
		return r
	}
	validateTopology(&r, topology{
		cellCount:   cellCount,
		faceCount:   g.FaceCount,
		pointCount:  g.PointCount,
		cells:       ConstantLayout(g.FaceCountPerCell),
		faces:       ConstantLayout(g.NodeCountPerFace),
		faceIndices: g.FaceIndicesPerCell,
		nodeIndices: g.NodeIndicesPerFace,
		rightHanded: g.CellFaceIsRightHanded,
		points:      g.Points,
	})
	return r
}

func checkCumulative(r *ValidationResult, field string, c []uint64, want uint64, what string) {
	if uint64(len(c)) != want {
		r.fail(field, -1, "has %d entries, want one per %s (%d)", len(c), what, want)
		return
	}
	if err := offsets.Validate(c); err != nil {
		r.fail(field, -1, "%v", err)
	}
}

func validateTopology(r *ValidationResult, t topology) {
	// Tier 1: buffer lengths.
	faceSlots := t.cells.Total(t.cellCount)
	nodeSlots := t.faces.Total(t.faceCount)
	checkLen(r, "FaceIndicesPerCell", uint64(len(t.faceIndices)), faceSlots)
	checkLen(r, "CellFaceIsRightHanded", uint64(len(t.rightHanded)), faceSlots)
	checkLen(r, "NodeIndicesPerFace", uint64(len(t.nodeIndices)), nodeSlots)
	checkLen(r, "Points", uint64(len(t.points)), 3*t.pointCount)
	if !r.OK() {
		return
	}

	// Tier 2: index ranges.
	if i, ok := firstAtLeast(t.faceIndices, t.faceCount); ok {
		r.fail("FaceIndicesPerCell", int64(i), "face index %d >= face count %d", t.faceIndices[i], t.faceCount)
	}
	if i, ok := firstAtLeast(t.nodeIndices, t.pointCount); ok {
		r.fail("NodeIndicesPerFace", int64(i), "node index %d >= point count %d", t.nodeIndices[i], t.pointCount)
	}
	if !r.OK() {
		return
	}

	// Tier 3: consistency warnings.
	warnFaceUsage(r, t)
	warnNodeUsage(r, t)
	for i, v := range t.rightHanded {
		if v > 1 {
			r.warn("CellFaceIsRightHanded", int64(i), "flag %d is neither 0 nor 1", v)
			break
		}
	}
	for f := uint64(0); f < t.faceCount; f++ {
		if n := t.faces.Count(f); n < 3 {
			r.warn("NodeIndicesPerFace", int64(t.faces.Start(f)), "face %d has %d nodes, a polygon needs 3", f, n)
			break
		}
	}
}

func checkLen(r *ValidationResult, field string, got, want uint64) {
	if got != want {
		r.fail(field, -1, "has %d entries, want %d", got, want)
	}
}

func firstAtLeast(xs []uint64, limit uint64) (int, bool) {
	for i, x := range xs {
		if x >= limit {
			return i, true
		}
	}
	return 0, false
}

// warnFaceUsage flags faces shared by more than two cells, faces no cell
// uses, and cells listing the same face twice.
func warnFaceUsage(r *ValidationResult, t topology) {
	uses := make([]uint32, t.faceCount)
	repeated := false
	for c := uint64(0); c < t.cellCount; c++ {
		start, n := t.cells.Start(c), t.cells.Count(c)
		seen := make(map[uint64]struct{}, n)
		for k := start; k < start+n; k++ {
			f := t.faceIndices[k]
			if _, dup := seen[f]; dup && !repeated {
				r.warn("FaceIndicesPerCell", int64(k), "cell %d lists face %d twice", c, f)
				repeated = true
			}
			seen[f] = struct{}{}
			uses[f]++
		}
	}
	var unused, crowded int
	firstUnused, firstCrowded := -1, -1
	for f, u := range uses {
		switch {
		case u == 0:
			if unused == 0 {
				firstUnused = f
			}
			unused++
		case u > 2:
			if crowded == 0 {
				firstCrowded = f
			}
			crowded++
		}
	}
	if unused > 0 {
		r.warn("FaceIndicesPerCell", -1, "%d faces are not used by any cell, first is %d", unused, firstUnused)
	}
	if crowded > 0 {
		r.warn("FaceIndicesPerCell", -1, "%d faces are shared by more than two cells, first is %d", crowded, firstCrowded)
	}
}

func warnNodeUsage(r *ValidationResult, t topology) {
	used := make([]bool, t.pointCount)
	for _, n := range t.nodeIndices {
		used[n] = true
	}
	unused, first := 0, -1
	for i, u := range used {
		if !u {
			if unused == 0 {
				first = i
			}
			unused++
		}
	}
	if unused > 0 {
		r.warn("NodeIndicesPerFace", -1, "%d points are not used by any face, first is %d", unused, first)
	}
}
