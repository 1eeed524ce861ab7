package detector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Empty(t, hands)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands(FistLandmarks(), OpenPalmLandmarks())

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, hands)
	})

	t.Run("Close returns nil", func(t *testing.T) {
		assert.NoError(t, NewMockDetector().Close())
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestFirst(t *testing.T) {
	assert.Nil(t, First(nil))

	hands := []HandLandmarks{FistLandmarks(), OpenPalmLandmarks()}
	first := First(hands)
	require.NotNil(t, first)
	assert.Equal(t, hands[0].Points, first.Points)
}

func extended(h HandLandmarks, f Finger) bool {
	return h.Tip(f).Y < h.PIP(f).Y
}

func TestFixtures(t *testing.T) {
	tests := []struct {
		name string
		hand HandLandmarks
		open map[Finger]bool
	}{
		{"open palm", OpenPalmLandmarks(), map[Finger]bool{Index: true, Middle: true, Ring: true, Pinky: true}},
		{"fist", FistLandmarks(), map[Finger]bool{Index: false, Middle: false, Ring: false, Pinky: false}},
		{"two fingers", TwoFingersLandmarks(), map[Finger]bool{Index: true, Middle: true, Ring: false, Pinky: false}},
		{"rock", RockLandmarks(), map[Finger]bool{Index: true, Middle: false, Ring: false, Pinky: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for f, want := range tt.open {
				assert.Equal(t, want, extended(tt.hand, f), "%s extended", f)
			}
		})
	}

	t.Run("pinch brings thumb and index together", func(t *testing.T) {
		h := PinchLandmarks()
		assert.InDelta(t, h.Points[ThumbTip].X, h.Points[IndexTip].X, 0.05)
		assert.InDelta(t, h.Points[ThumbTip].Y, h.Points[IndexTip].Y, 0.05)
	})

	t.Run("pointing places the index tip", func(t *testing.T) {
		h := PointingLandmarks(0.2, 0.3)
		assert.Equal(t, Point3D{X: 0.2, Y: 0.3}, h.Tip(Index))
	})
}

func TestFingerString(t *testing.T) {
	assert.Equal(t, "index", Index.String())
	assert.Equal(t, "pinky", Pinky.String())
	assert.Equal(t, "unknown", Finger(9).String())
}

func TestDecodeResponse(t *testing.T) {
	t.Run("full hand", func(t *testing.T) {
		points := make([]byte, 0, 512)
		points = append(points, '[')
		for i := 0; i < NumLandmarks; i++ {
			if i > 0 {
				points = append(points, ',')
			}
			points = append(points, []byte(`{"x":0.5,"y":0.5,"z":0}`)...)
		}
		points = append(points, ']')
		line := `{"hands":[{"points":` + string(points) + `,"handedness":"Left","score":0.9}]}`

		hands, err := decodeResponse([]byte(line))

		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, "Left", hands[0].Handedness)
		assert.Equal(t, 0.5, hands[0].Points[PinkyTip].X)
	})

	t.Run("partial hand is skipped", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[{"points":[{"x":1,"y":1,"z":0}]}]}`))
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"hands":[],"error":"model not loaded"}`))
		assert.ErrorContains(t, err, "model not loaded")
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := decodeResponse([]byte("not json"))
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.MaxHands)
	assert.Equal(t, 0.7, cfg.MinConfidence)
}
