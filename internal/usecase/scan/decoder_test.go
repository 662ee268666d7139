package scan

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	domscan "example.com/pos-scanner/internal/domain/scan"
)

func TestDecoder_StagesRunCheapestFirst(t *testing.T) {
	tests := []struct {
		name      string
		frame     uint8
		min       uint8
		wantFound bool
		wantStage Stage
		wantCalls int32
	}{
		{name: "Raw frame decodes", frame: 255, min: 200, wantFound: true, wantStage: StageRaw, wantCalls: 1},
		{name: "Only enhancement reveals symbol", frame: 100, min: 170, wantFound: true, wantStage: StageEnhanced, wantCalls: 3},
		{name: "Nothing found after all stages", frame: 10, min: 200, wantFound: false, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := readerFor("4006381333931", tt.min)
			decoder := NewDecoder(reader, Enhancement{Gain: 1.5, Offset: 20})

			det, ok, err := decoder.Decode(solidFrame(tt.frame))

			require.NoError(t, err)
			require.Equal(t, tt.wantFound, ok)
			require.Equal(t, tt.wantCalls, reader.calls.Load())
			if tt.wantFound {
				require.Equal(t, "4006381333931", det.Symbol.Text)
				require.Equal(t, tt.wantStage, det.Stage)
			}
		})
	}
}

func TestDecoder_DoesNotModifyInputFrame(t *testing.T) {
	frame := solidFrame(100)
	decoder := NewDecoder(readerFor("X", 250), DefaultEnhancement)

	_, ok, err := decoder.Decode(frame)

	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint8(100), pixelValue(frame))
}

func TestDecoder_FirstSymbolWins(t *testing.T) {
	reader := &fakeReader{read: func(img image.Image) ([]domscan.Symbol, error) {
		return []domscan.Symbol{{Text: ""}, {Text: "first"}, {Text: "second"}}, nil
	}}

	det, ok, err := NewDecoder(reader, DefaultEnhancement).Decode(blankFrame())

	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "first", det.Symbol.Text)
}

func TestDecoder_ReaderErrorIsReturnedWhenEveryStageFails(t *testing.T) {
	boom := errors.New("malformed frame")
	reader := &fakeReader{read: func(img image.Image) ([]domscan.Symbol, error) { return nil, boom }}

	_, ok, err := NewDecoder(reader, DefaultEnhancement).Decode(blankFrame())

	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "raw stage")
	require.ErrorContains(t, err, "enhanced stage")
	require.False(t, ok)
	require.Equal(t, int32(3), reader.calls.Load())
}

func TestDecoder_ReaderErrorFallsThroughToLaterStage(t *testing.T) {
	boom := errors.New("malformed frame")
	reader := &fakeReader{}
	reader.read = func(img image.Image) ([]domscan.Symbol, error) {
		if reader.calls.Load() == 1 {
			return nil, boom
		}
		return []domscan.Symbol{{Text: "4006381333931"}}, nil
	}

	det, ok, err := NewDecoder(reader, DefaultEnhancement).Decode(blankFrame())

	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StageGrayscale, det.Stage)
	require.Equal(t, "4006381333931", det.Symbol.Text)
}

func TestEnhancement_ClampsToByteRange(t *testing.T) {
	e := Enhancement{Gain: 1.5, Offset: 20}

	require.Equal(t, uint8(20), e.scale(0))
	require.Equal(t, uint8(170), e.scale(100))
	require.Equal(t, uint8(255), e.scale(200))
	require.Equal(t, uint8(0), Enhancement{Gain: 1, Offset: 0}.scale(0))
	require.Equal(t, uint8(0), Enhancement{Gain: 1, Offset: -50}.scale(10))
	require.Equal(t, uint8(0), Enhancement{Gain: 1, Offset: -50}.scale(50))
	require.Equal(t, uint8(1), Enhancement{Gain: 1, Offset: -50}.scale(51))
}
