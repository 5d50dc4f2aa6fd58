package decode

// fakeAdapter produces a ramp of samples. available may be smaller than total
// to model a source that runs dry before its declared length.
type fakeAdapter struct {
	total     int64
	available int64
	channels  int
	produced  int64
	reads     []int
	releases  int
	readErr   error
}

func newFakeAdapter(total int64, channels int) *fakeAdapter {
	return &fakeAdapter{total: total, available: total, channels: channels}
}

func (f *fakeAdapter) Channels() int       { return f.channels }
func (f *fakeAdapter) SampleRate() int     { return 44100 }
func (f *fakeAdapter) Format() string      { return "fake" }
func (f *fakeAdapter) TotalSamples() int64 { return f.total }

func (f *fakeAdapter) Read(dst []float32) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	n := int64(len(dst))
	if left := f.available - f.produced; left < n {
		n = left
	}
	for i := int64(0); i < n; i++ {
		dst[i] = float32(f.produced+i) / 1e6
	}
	f.produced += n
	f.reads = append(f.reads, int(n))
	return int(n), nil
}

func (f *fakeAdapter) Release() error {
	f.releases++
	return nil
}
