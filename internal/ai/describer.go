package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ChatProvider is the slice of ChatClient the describer and the
// conversationalist depend on.
type ChatProvider interface {
	CaptionFrame(ctx context.Context, imageData []byte) (string, error)
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// Description is the consolidated analysis of one video, plus the provider's
// suggestions for how to file it. Name and Label may be empty when the
// provider declines to suggest them.
type Description struct {
	Analysis string
	Name     string
	Label    string
}

// Describer turns a video file into a free-text analysis by sampling frames,
// captioning each one, and asking the provider for a consolidated summary.
type Describer struct {
	provider  ChatProvider
	extractor *FrameExtractor
	maxFrames int
	frameSize int
}

func NewDescriber(provider ChatProvider, extractor *FrameExtractor, maxFrames, frameSize int) *Describer {
	if maxFrames <= 0 {
		maxFrames = 5
	}
	if frameSize <= 0 {
		frameSize = 512
	}
	return &Describer{
		provider:  provider,
		extractor: extractor,
		maxFrames: maxFrames,
		frameSize: frameSize,
	}
}

// Describe analyzes the video at videoPath. Frames that fail to caption are
// skipped; at least one caption is required to produce an analysis.
func (d *Describer) Describe(ctx context.Context, videoPath string) (*Description, error) {
	frames, err := d.extractor.ExtractFrames(videoPath, d.maxFrames, d.frameSize)
	if err != nil {
		return nil, fmt.Errorf("frame extraction: %w", err)
	}

	captions := make([]string, 0, len(frames))
	for i, frameData := range frames {
		caption, err := d.provider.CaptionFrame(ctx, frameData)
		if err != nil {
			slog.Warn("failed to caption frame", "frame", i, "error", err)
			continue
		}
		captions = append(captions, caption)
	}

	if len(captions) == 0 {
		return nil, fmt.Errorf("no frames could be captioned")
	}

	return d.summarize(ctx, captions)
}

const summarizeSystemPrompt = "You are a surveillance video analyst. You receive " +
	"descriptions of frames sampled in order from a single video and produce one " +
	"coherent analysis of what happened in it."

func (d *Describer) summarize(ctx context.Context, captions []string) (*Description, error) {
	var sb strings.Builder
	for i, caption := range captions {
		fmt.Fprintf(&sb, "Frame %d:\n%s\n\n", i+1, caption)
	}
	sb.WriteString("Write your answer in exactly this format:\n")
	sb.WriteString("Summary: <the full analysis of the video>\n")
	sb.WriteString("Name: <a short title for this footage, a few words>\n")
	sb.WriteString("Label: <a single category word, e.g. entrance, lobby, parking>\n")

	raw, err := d.provider.Complete(ctx, []ChatMessage{
		TextMessage("system", summarizeSystemPrompt),
		TextMessage("user", sb.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("summarize captions: %w", err)
	}

	return parseDescription(raw), nil
}

// parseDescription pulls the Summary/Name/Label fields out of the provider's
// reply. A reply that ignores the format becomes the analysis verbatim.
func parseDescription(raw string) *Description {
	desc := &Description{}
	var summary []string
	inSummary := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Summary:"):
			summary = append(summary, strings.TrimSpace(strings.TrimPrefix(trimmed, "Summary:")))
			inSummary = true
		case strings.HasPrefix(trimmed, "Name:"):
			desc.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "Name:"))
			inSummary = false
		case strings.HasPrefix(trimmed, "Label:"):
			desc.Label = strings.TrimSpace(strings.TrimPrefix(trimmed, "Label:"))
			inSummary = false
		case inSummary:
			summary = append(summary, line)
		}
	}

	desc.Analysis = strings.TrimSpace(strings.Join(summary, "\n"))
	if desc.Analysis == "" {
		desc.Analysis = strings.TrimSpace(raw)
	}
	return desc
}
