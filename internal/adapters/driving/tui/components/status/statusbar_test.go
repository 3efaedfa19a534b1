package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
	assert.Nil(t, bar.Init())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(_ *Bar) {},
			contains: []string{"Ready", "enter: ask"},
		},
		{
			name:     "thinking",
			setup:    func(b *Bar) { b.SetState(StateThinking) },
			contains: []string{"Thinking..."},
		},
		{
			name: "error with message",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("model offline")
			},
			contains: []string{"Error: model offline"},
		},
		{
			name: "answered",
			setup: func(b *Bar) {
				b.SetState(StateAnswered)
				b.SetSourceCount(4)
			},
			contains: []string{"4 sources"},
		},
		{
			name: "sources shows navigation hints",
			setup: func(b *Bar) {
				b.SetState(StateSources)
				b.SetSourceCount(2)
			},
			contains: []string{"2 sources", "n: new question", "enter: preview"},
		},
		{
			name:     "collection",
			setup:    func(b *Bar) { b.SetCollection("kb", 12) },
			contains: []string{"kb (12 entries)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetSourceCount(3)
	bar.SetCollection("kb", 1)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.SourceCount())
	assert.Contains(t, bar.View(), "kb")
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)

	assert.NotEmpty(t, bar.View())
}
