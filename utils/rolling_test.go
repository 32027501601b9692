package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestRollingWindow(t *testing.T) {
	rw := NewRollingWindow(3)
	test.That(t, rw.NumSamples(), test.ShouldEqual, 3)
	test.That(t, rw.Values(), test.ShouldBeEmpty)

	rw.Add(1)
	rw.Add(2)
	test.That(t, rw.Values(), test.ShouldResemble, []float64{1, 2})

	rw.Add(3)
	rw.Add(4)
	test.That(t, rw.Values(), test.ShouldResemble, []float64{2, 3, 4})
	test.That(t, rw.Total(), test.ShouldEqual, 4)

	values := rw.Values()
	values[0] = 100
	test.That(t, rw.Values()[0], test.ShouldEqual, 2.0)

	test.That(t, NewRollingWindow(0).NumSamples(), test.ShouldEqual, 1)
}
