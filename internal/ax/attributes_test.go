package ax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_PositionAndSizeDeriveFromFrame(t *testing.T) {
	a := newAttributes()
	require.NoError(t, a.Set(AttrFrame, RectValue(R(10, 20, 300, 400))))

	pos, ok := a.Get(AttrPosition)
	require.True(t, ok)
	p, err := pos.AsPoint()
	require.NoError(t, err)
	assert.Equal(t, Point{X: 10, Y: 20}, p)

	size, ok := a.Get(AttrSize)
	require.True(t, ok)
	s, err := size.AsSize()
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 300, Height: 400}, s)
}

func TestAttributes_DerivedAbsentWithoutFrame(t *testing.T) {
	a := newAttributes()

	_, ok := a.Get(AttrPosition)
	assert.False(t, ok)
	_, ok = a.Get(AttrSize)
	assert.False(t, ok)

	// A frame of the wrong shape does not produce a position either.
	require.NoError(t, a.Set(AttrFrame, StringValue("not a rect")))
	_, ok = a.Get(AttrPosition)
	assert.False(t, ok)
}

func TestAttributes_PositionThenSizeBuildsFrame(t *testing.T) {
	tests := []struct {
		name  string
		order []Attribute
	}{
		{"position first", []Attribute{AttrPosition, AttrSize}},
		{"size first", []Attribute{AttrSize, AttrPosition}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAttributes()
			for _, attr := range tt.order {
				switch attr {
				case AttrPosition:
					require.NoError(t, a.Set(AttrPosition, PointValue(Point{X: 5, Y: 6})))
				case AttrSize:
					require.NoError(t, a.Set(AttrSize, SizeValue(Size{Width: 70, Height: 80})))
				}
			}
			v, ok := a.Get(AttrFrame)
			require.True(t, ok)
			frame, err := v.AsRect()
			require.NoError(t, err)
			assert.Equal(t, R(5, 6, 70, 80), frame)
		})
	}
}

func TestAttributes_PositionKeepsSize(t *testing.T) {
	a := newAttributes()
	require.NoError(t, a.Set(AttrFrame, RectValue(R(0, 0, 100, 100))))
	require.NoError(t, a.Set(AttrPosition, PointValue(Point{X: 50, Y: 60})))

	v, _ := a.Get(AttrFrame)
	frame, _ := v.AsRect()
	assert.Equal(t, R(50, 60, 100, 100), frame)
	assert.NotContains(t, a.values, AttrPosition)
}

func TestAttributes_DerivedWriteRejectsWrongShape(t *testing.T) {
	a := newAttributes()
	err := a.Set(AttrPosition, SizeValue(Size{Width: 1, Height: 1}))
	require.ErrorIs(t, err, ErrTypeMismatch)
	err = a.Set(AttrSize, BoolValue(true))
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, ok := a.Get(AttrFrame)
	assert.False(t, ok)
}

func TestAttributes_StoresOtherValuesVerbatim(t *testing.T) {
	a := newAttributes()
	require.NoError(t, a.Set(AttrTitle, StringValue("Inbox")))

	v, ok := a.Get(AttrTitle)
	require.True(t, ok)
	_, err := v.AsBool()
	require.ErrorIs(t, err, ErrTypeMismatch)
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Inbox", s)

	a.Remove(AttrTitle)
	_, ok = a.Get(AttrTitle)
	assert.False(t, ok)
}

func TestAttributes_String(t *testing.T) {
	a := newAttributes()
	require.NoError(t, a.Set(AttrTitle, StringValue("x")))
	require.NoError(t, a.Set(AttrMain, BoolValue(true)))
	assert.Equal(t, `[AXMain: true, AXTitle: "x"]`, a.String())
}
