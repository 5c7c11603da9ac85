package preprocess

// noneProcessor passes samples through unchanged.
type noneProcessor struct{}

func (noneProcessor) WorkBufSize(int) int { return 0 }

func (noneProcessor) Init(Reader, int, []byte, int) error { return nil }

func (noneProcessor) Process(i int, read Reader, _ []byte) int16 {
	return read(i)
}
