package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	completion string
	err        error
	messages   [][]ChatMessage
}

func (f *fakeProvider) CaptionFrame(_ context.Context, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func (f *fakeProvider) Complete(_ context.Context, messages []ChatMessage) (string, error) {
	f.messages = append(f.messages, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func TestDescriber_Summarize(t *testing.T) {
	provider := &fakeProvider{completion: "Summary: A courier approaches the door.\nName: Front Door Delivery\nLabel: entrance"}
	d := NewDescriber(provider, nil, 5, 512)

	desc, err := d.summarize(context.Background(), []string{"frame one caption", "frame two caption"})
	require.NoError(t, err)

	assert.Equal(t, "A courier approaches the door.", desc.Analysis)
	assert.Equal(t, "Front Door Delivery", desc.Name)
	assert.Equal(t, "entrance", desc.Label)

	require.Len(t, provider.messages, 1)
	messages := provider.messages[0]
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	userContent, ok := messages[1].Content.(string)
	require.True(t, ok)
	assert.Contains(t, userContent, "Frame 1:\nframe one caption")
	assert.Contains(t, userContent, "Frame 2:\nframe two caption")
}

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Description
	}{
		{
			name: "well formed",
			raw:  "Summary: A quiet lobby.\nName: Lobby Cam\nLabel: lobby",
			want: Description{Analysis: "A quiet lobby.", Name: "Lobby Cam", Label: "lobby"},
		},
		{
			name: "multi line summary",
			raw:  "Summary: First line.\nSecond line.\nName: Clip\nLabel: parking",
			want: Description{Analysis: "First line.\nSecond line.", Name: "Clip", Label: "parking"},
		},
		{
			name: "missing name and label",
			raw:  "Summary: Just a summary.",
			want: Description{Analysis: "Just a summary."},
		},
		{
			name: "format ignored entirely",
			raw:  "The model just rambled about the video here.",
			want: Description{Analysis: "The model just rambled about the video here."},
		},
		{
			name: "extra whitespace",
			raw:  "  Summary:   padded summary  \n  Label:   lobby  ",
			want: Description{Analysis: "padded summary", Label: "lobby"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDescription(tt.raw)
			assert.Equal(t, tt.want, *got)
		})
	}
}
