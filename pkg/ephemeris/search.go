package ephemeris

import (
	"context"
	"math"
)

const (
	// bisection stops once the bracket is narrower than half a second
	searchTolerance = 0.5 / 86400
	// samples between context checks
	cancelCheckEvery = 64
)

type crossing struct {
	jd        float64
	ascending bool
}

// findCrossings samples f every step days over [jd0, jd1] and refines each
// sign change by bisection. A sample of exactly zero counts as positive.
func findCrossings(ctx context.Context, jd0, jd1, step float64, f func(float64) float64) ([]crossing, error) {
	if step <= 0 || jd1 <= jd0 {
		return nil, nil
	}

	n := int(math.Ceil((jd1 - jd0) / step))
	out := make([]crossing, 0, n/24+1)

	a := jd0
	fa := f(a)

	for i := 1; i <= n; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		b := math.Min(jd0+float64(i)*step, jd1)
		fb := f(b)

		if (fa < 0) != (fb < 0) {
			out = append(out, crossing{
				jd:        bisect(f, a, b, fa),
				ascending: fa < 0,
			})
		}

		a, fa = b, fb
	}

	return out, nil
}

func bisect(f func(float64) float64, a, b, fa float64) float64 {
	for b-a > searchTolerance {
		mid := (a + b) / 2
		fm := f(mid)

		if (fm < 0) == (fa < 0) {
			a, fa = mid, fm
		} else {
			b = mid
		}
	}

	return (a + b) / 2
}
