package introspect

type testAudio struct {
	Samples []float32
}

func (testAudio) Capability() Capability { return AudioChannel }

type testKnob struct {
	Value float64
}

func (*testKnob) Capability() Capability { return Control }

// mixed interleaves capabilities and includes fields that are not part of
// the aggregate.
type mixed struct {
	In1    testAudio
	Gain   testKnob `name:"Gain (dB)"`
	In2    testAudio
	hidden int
	Skip   testAudio `port:"-"`
	Mix    testKnob
	Raw    []float32 `port:"audio_channel"`
	Other  int
}

type six struct {
	A testAudio
	B testKnob
	C testAudio
	D testKnob
	E testAudio
	F testKnob
}

type five struct {
	A, B, C, D, E testAudio
}

type plain struct {
	First  int
	Second string
	Third  float64
	Fourth bool
}

var audioPred = HasCapability(AudioChannel)
var controlPred = HasCapability(Control)
