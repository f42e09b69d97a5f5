package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

type FrameExtractor struct {
	ffmpegPath string
	tempDir    string
}

func NewFrameExtractor() (*FrameExtractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	tempDir := filepath.Join(os.TempDir(), "footagelens-frames")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &FrameExtractor{
		ffmpegPath: ffmpegPath,
		tempDir:    tempDir,
	}, nil
}

// ExtractFrames samples count frames evenly spaced across the video, each
// scaled and padded to size x size JPEG. Individual frame failures are
// skipped; at least one frame must succeed.
func (fe *FrameExtractor) ExtractFrames(videoPath string, count int, size int) ([][]byte, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file not accessible: %w", err)
	}

	duration, err := fe.getVideoDuration(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get video duration: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("invalid video duration: %f", duration)
	}

	frames := make([][]byte, 0, count)
	interval := duration / float64(count+1)

	for i := 1; i <= count; i++ {
		timestamp := interval * float64(i)
		frameData, err := fe.extractSingleFrame(videoPath, timestamp, size)
		if err != nil {
			slog.Warn("failed to extract frame", "frame", i, "timestamp", timestamp, "error", err)
			continue
		}
		frames = append(frames, frameData)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("failed to extract any frames from video (attempted %d frames)", count)
	}

	slog.Debug("extracted frames", "video", videoPath, "frames", len(frames), "requested", count)
	return frames, nil
}

func (fe *FrameExtractor) getVideoDuration(videoPath string) (float64, error) {
	// ffprobe is more reliable when present
	ffprobePath, err := exec.LookPath("ffprobe")
	if err == nil {
		cmd := exec.Command(ffprobePath,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			videoPath)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout

		if err := cmd.Run(); err == nil {
			durationStr := strings.TrimSpace(stdout.String())
			if duration, err := strconv.ParseFloat(durationStr, 64); err == nil && duration > 0 {
				return duration, nil
			}
		}
	}

	// Fallback to parsing ffmpeg banner output
	cmd := exec.Command(fe.ffmpegPath,
		"-i", videoPath,
		"-f", "null",
		"-")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()
	output := stderr.String()
	durationPrefix := "Duration: "
	startIndex := strings.Index(output, durationPrefix)
	if startIndex == -1 {
		return 0, fmt.Errorf("duration not found in ffmpeg output")
	}

	startIndex += len(durationPrefix)
	endIndex := strings.Index(output[startIndex:], ",")
	if endIndex == -1 {
		return 0, fmt.Errorf("invalid duration format")
	}

	durationStr := output[startIndex : startIndex+endIndex]
	parts := strings.Split(durationStr, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s", durationStr)
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}

	return hours*3600 + minutes*60 + seconds, nil
}

func (fe *FrameExtractor) extractSingleFrame(videoPath string, timestamp float64, size int) ([]byte, error) {
	tempFile := filepath.Join(fe.tempDir, fmt.Sprintf("frame_%f.jpg", timestamp))
	defer os.Remove(tempFile)

	args := []string{
		"-ss", fmt.Sprintf("%.2f", timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", size, size, size, size),
		"-q:v", "2",
		"-f", "mjpeg",
		tempFile,
	}

	cmd := exec.Command(fe.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Debug("ffmpeg failed", "stderr", stderr.String())
		return nil, fmt.Errorf("failed to extract frame at %f: %w", timestamp, err)
	}

	file, err := os.Open(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open extracted frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	return buf.Bytes(), nil
}

func (fe *FrameExtractor) Cleanup() error {
	return os.RemoveAll(fe.tempDir)
}
