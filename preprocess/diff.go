package preprocess

// diffProcessor emits first-order differences under 16-bit wraparound
// arithmetic: process(0) = src[0], process(i) = src[i] - src[i-1].
type diffProcessor struct{}

func (diffProcessor) WorkBufSize(int) int { return 0 }

func (diffProcessor) Init(Reader, int, []byte, int) error { return nil }

func (diffProcessor) Process(i int, read Reader, _ []byte) int16 {
	if i == 0 {
		return read(0)
	}

	return int16(uint16(read(i)) - uint16(read(i-1)))
}

// InverseDIFF reconstructs the original samples from DIFF residuals via a
// 16-bit wraparound prefix sum: src[0] = residual[0], src[i] = src[i-1] +
// residual[i]. It exists to make invariant I1 (DIFF round-trips under its
// inverse) testable; AIRSPACE's decoder is otherwise out of scope.
func InverseDIFF(residuals []int16) []int16 {
	out := make([]int16, len(residuals))
	if len(residuals) == 0 {
		return out
	}

	out[0] = residuals[0]
	for i := 1; i < len(residuals); i++ {
		out[i] = int16(uint16(out[i-1]) + uint16(residuals[i]))
	}

	return out
}
