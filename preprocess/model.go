package preprocess

import "github.com/airspace/airspace/errs"

// modelProcessor predicts each sample from a running per-context model array
// and emits the residual, then blends the model towards the observed sample.
// Unlike the source's g_model_adaptation_rate, which stashes model_rate in a
// package-level global, the rate here is captured on the processor instance
// returned by For, so concurrent contexts never share mutable state.
type modelProcessor struct {
	rate int
}

func (p *modelProcessor) WorkBufSize(srcBytes int) int { return RoundUpToEven(srcBytes) }

func (p *modelProcessor) Init(_ Reader, n int, workBuf []byte, modelRate int) error {
	if workBuf == nil {
		return errs.ErrWorkBufNull
	}
	if len(workBuf) < p.WorkBufSize(n*2) {
		return errs.ErrWorkBufTooSmall
	}
	if modelRate < 0 || modelRate > MaxModelRate {
		return errs.ErrParamsInvalid
	}

	p.rate = modelRate

	return nil
}

// Process reports the residual between the current sample and the model's
// prediction, both under 16-bit wraparound, then updates the model in place
// using the prediction it made before this call (cmp_up_model16's blend:
// (model*model_rate + data*(16-model_rate)) / 16, truncating).
func (p *modelProcessor) Process(i int, read Reader, workBuf []byte) int16 {
	data := read(i)
	model := getInt16(workBuf, i)

	residual := int16(uint16(data) - uint16(model))

	putInt16(workBuf, i, upModel16(model, data, p.rate))

	return residual
}

// upModel16 blends the old model value towards the observed sample, mirroring
// cmp_up_model16's truncating fixed-point average in base 16.
func upModel16(model, data int16, modelRate int) int16 {
	m := int32(uint16(model))
	d := int32(uint16(data))
	rate := int32(modelRate)

	blended := (m*rate + d*(16-rate)) / 16

	return int16(uint16(blended))
}
