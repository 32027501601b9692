package objectdetection

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func testDetections() []Detection {
	return []Detection{
		NewDetection(image.Rect(0, 0, 10, 10), 0.9, "Orange"),
		NewDetection(image.Rect(0, 0, 2, 2), 0.5, "orange"),
		NewDetection(image.Rect(0, 0, 30, 30), 0.2, "green"),
		NewDetection(image.Rect(0, 0, 10, 10), 0.7, "green"),
	}
}

func TestAreaFilter(t *testing.T) {
	out := NewAreaFilter(100)(testDetections())
	test.That(t, out, test.ShouldHaveLength, 3)
	for _, d := range out {
		test.That(t, d.BoundingBox().Dx()*d.BoundingBox().Dy(), test.ShouldBeGreaterThanOrEqualTo, 100)
	}
}

func TestScoreFilter(t *testing.T) {
	out := NewScoreFilter(0.6)(testDetections())
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0].Score(), test.ShouldEqual, 0.9)
	test.That(t, out[1].Score(), test.ShouldEqual, 0.7)
}

func TestOffsetPostprocessor(t *testing.T) {
	out := NewOffsetPostprocessor(image.Pt(4, 6))(testDetections())
	test.That(t, out, test.ShouldHaveLength, 4)
	test.That(t, *out[2].BoundingBox(), test.ShouldResemble, image.Rect(4, 6, 34, 36))
	test.That(t, out[2].Score(), test.ShouldEqual, 0.2)
	test.That(t, out[2].Label(), test.ShouldEqual, "green")
}

func TestLargestFilter(t *testing.T) {
	in := testDetections()
	out := NewLargestFilter(3)(in)
	test.That(t, out, test.ShouldHaveLength, 3)
	test.That(t, out[0].Score(), test.ShouldEqual, 0.2)
	test.That(t, out[1].Score(), test.ShouldEqual, 0.9)
	test.That(t, out[2].Score(), test.ShouldEqual, 0.7)
	// the input order is untouched
	test.That(t, in[0].Score(), test.ShouldEqual, 0.9)
	test.That(t, NewLargestFilter(10)(in), test.ShouldHaveLength, 4)
}

func TestChain(t *testing.T) {
	out := Chain(NewAreaFilter(100), NewScoreFilter(0.5))(testDetections())
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0].Score(), test.ShouldEqual, 0.9)
	test.That(t, out[1].Score(), test.ShouldEqual, 0.7)
	test.That(t, Chain()(testDetections()), test.ShouldHaveLength, 4)
}
