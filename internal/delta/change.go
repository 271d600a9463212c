// Package delta compares binary masks of two periods.
package delta

import ee "github.com/forest-guardian/lakewatch/internal/earthengine"

// Change is later minus earlier: +1 where the class appeared, -1 where it
// disappeared, 0 where it held. Pixels masked in either input stay masked.
func Change(later, earlier ee.Image) ee.Image {
	return later.Subtract(earlier)
}

func Gain(change ee.Image) ee.Image {
	return change.Eq(1)
}

func Loss(change ee.Image) ee.Image {
	return change.Eq(-1)
}

// Encroachment keeps built-up pixels of the later period that were not
// built up in the earlier one.
func Encroachment(builtLater, builtChange ee.Image) ee.Image {
	return builtLater.And(Gain(builtChange))
}
