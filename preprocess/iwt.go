package preprocess

import "github.com/airspace/airspace/errs"

// iwtProcessor performs a multi-level integer 5/3 wavelet decomposition
// once, during Init, storing every coefficient into the work buffer;
// Process is then a plain lookup.
type iwtProcessor struct{}

func (iwtProcessor) WorkBufSize(srcBytes int) int { return RoundUpToEven(srcBytes) }

func (p iwtProcessor) Init(read Reader, n int, workBuf []byte, _ int) error {
	if workBuf == nil {
		return errs.ErrWorkBufNull
	}
	if len(workBuf) < p.WorkBufSize(n*2) {
		return errs.ErrWorkBufTooSmall
	}

	for i := 0; i < n; i++ {
		putInt16(workBuf, i, read(i))
	}

	iwtMultiLevelDecomposition(workBuf, n)

	return nil
}

func (iwtProcessor) Process(i int, _ Reader, workBuf []byte) int16 {
	return getInt16(workBuf, i)
}

func floorDiv2(dividend int32) int16 { return int16(dividend >> 1) }
func floorDiv4(dividend int32) int16 { return int16(dividend >> 2) }

func oddCoefficient(centre, left, right int16) int16 {
	return centre - floorDiv2(int32(left)+int32(right))
}

func lastOddCoefficient(centre, left int16) int16 {
	return centre - left
}

func evenCoefficient(centre, oddLeft, oddRight int16) int16 {
	return centre + floorDiv4(int32(oddLeft)+int32(oddRight))
}

func edgeEvenCoefficient(centre, oddNeighbour int16) int16 {
	return centre + floorDiv2(int32(oddNeighbour))
}

// iwtSingleLevel runs one lifting level at stride s over buf in place:
// buf holds the input coefficients on entry and the level's output
// coefficients (detail on odd, approximation on even) on return.
//
// Mirrors original_source's iwt_single_level_i16 (itself implementing
// Solomon, Data Compression 4th ed., eq. 5.24), specialized to the in-place
// case since every call here aliases its own input and output.
func iwtSingleLevel(buf []byte, n, s int) {
	get := func(i int) int16 { return getInt16(buf, i) }
	set := func(i int, v int16) { putInt16(buf, i, v) }

	if 2*s >= n {
		if s >= n {
			return // single element: output equals input, already in place
		}

		odd := lastOddCoefficient(get(s), get(0))
		set(s, odd)
		set(0, edgeEvenCoefficient(get(0), odd))

		return
	}

	odd := oddCoefficient(get(s), get(0), get(2*s))
	set(s, odd)
	set(0, edgeEvenCoefficient(get(0), odd))

	i := 2 * s
	for ; i < n-2*s; i += 2 * s {
		odd := oddCoefficient(get(i+s), get(i), get(i+2*s))
		set(i+s, odd)
		set(i, evenCoefficient(get(i), get(i-s), odd))
	}

	if i+s < n {
		odd := lastOddCoefficient(get(i+s), get(i))
		set(i+s, odd)
		set(i, evenCoefficient(get(i), get(i-s), odd))
	} else {
		set(i, edgeEvenCoefficient(get(i), get(i-s)))
	}
}

func iwtMultiLevelDecomposition(buf []byte, n int) {
	if n <= 1 {
		return
	}

	for s := 1; s < n; s <<= 1 {
		iwtSingleLevel(buf, n, s)
	}
}

// InverseIWT reconstructs the original samples from a multi-level IWT
// decomposition. It inverts iwtMultiLevelDecomposition's levels in reverse
// stride order, each level undoing the even-then-odd lifting steps. It
// exists to make invariant I1 (IWT round-trips under its inverse) testable;
// the source does not demonstrate this round-trip itself (§9's Open
// Questions), so this is this implementation's own construction, following
// the lifting scheme's standard invertibility (undo approximation using the
// already-restored detail coefficients, then undo detail using the
// restored neighbours).
func InverseIWT(coefficients []int16, n int) []int16 {
	buf := make([]byte, RoundUpToEven(n*2))
	for i, v := range coefficients {
		putInt16(buf, i, v)
	}

	var strides []int
	for s := 1; s < n; s <<= 1 {
		strides = append(strides, s)
	}

	for lvl := len(strides) - 1; lvl >= 0; lvl-- {
		iwtSingleLevelInverse(buf, n, strides[lvl])
	}

	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = getInt16(buf, i)
	}

	return out
}

// iwtSingleLevelInverse undoes one lifting level at stride s in place. It
// runs in two passes over the same index structure iwtSingleLevel visited:
// first every even (approximation) position is recovered, each using only
// its neighbouring odd (detail) coefficients, which this level never
// overwrites until the second pass touches them; then every odd position is
// recovered using the even neighbours the first pass just restored. The two
// passes never need each other's not-yet-restored values, so the order
// within each pass doesn't matter.
func iwtSingleLevelInverse(buf []byte, n, s int) {
	get := func(i int) int16 { return getInt16(buf, i) }
	set := func(i int, v int16) { putInt16(buf, i, v) }

	if 2*s >= n {
		if s >= n {
			return
		}

		y0, ys := get(0), get(s)
		x0 := y0 - floorDiv2(int32(ys))
		set(0, x0)
		set(s, ys+x0)

		return
	}

	var mids []int
	i := 2 * s
	for ; i < n-2*s; i += 2 * s {
		mids = append(mids, i)
	}
	lastPaired := i+s < n

	// Pass 1: recover even (approximation) positions.
	set(0, get(0)-floorDiv2(int32(get(s))))

	for _, m := range mids {
		set(m, get(m)-floorDiv4(int32(get(m-s))+int32(get(m+s))))
	}

	if lastPaired {
		set(i, get(i)-floorDiv4(int32(get(i-s))+int32(get(i+s))))
	} else {
		set(i, get(i)-floorDiv2(int32(get(i-s))))
	}

	// Pass 2: recover odd (detail) positions using the restored evens.
	set(s, get(s)+floorDiv2(int32(get(0))+int32(get(2*s))))

	for _, m := range mids {
		set(m+s, get(m+s)+floorDiv2(int32(get(m))+int32(get(m+2*s))))
	}

	if lastPaired {
		set(i+s, get(i+s)+get(i))
	}
}
