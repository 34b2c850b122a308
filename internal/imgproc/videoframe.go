package imgproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrVideoToolUnavailable is returned when ffmpeg/ffprobe are not installed
// on the host running the worker.
var ErrVideoToolUnavailable = errors.New("video processing tool unavailable")

// VideoFrameExtractor pulls a single representative frame out of a video
// file for use as a thumbnail source.
type VideoFrameExtractor interface {
	ExtractFrame(ctx context.Context, path string) (image.Image, error)
}

// FFmpegFrameExtractor shells out to ffprobe (duration) and ffmpeg (frame
// grab), the same way the reference transcoder drives both tools.
type FFmpegFrameExtractor struct {
	decoder *DefaultProcessor
}

// NewFFmpegFrameExtractor returns an extractor ready to use, or
// ErrVideoToolUnavailable if ffmpeg/ffprobe are not on PATH.
func NewFFmpegFrameExtractor() (*FFmpegFrameExtractor, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, ErrVideoToolUnavailable
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, ErrVideoToolUnavailable
	}
	return &FFmpegFrameExtractor{decoder: NewProcessor()}, nil
}

// ExtractFrame extracts a frame at t = min(1.0s, 10% of duration, >= 0.1s).
func (e *FFmpegFrameExtractor) ExtractFrame(ctx context.Context, path string) (image.Image, error) {
	duration, err := e.probeDuration(ctx, path)
	if err != nil {
		return nil, err
	}

	seekAt := duration * 0.1
	if seekAt > 1.0 {
		seekAt = 1.0
	}
	if seekAt < 0.1 {
		seekAt = 0.1
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", strconv.FormatFloat(seekAt, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg frame extraction: %v: %s", ErrCorruptedImage, err, stderr.String())
	}

	return e.decoder.Decode(bytes.NewReader(stdout.Bytes()))
}

func (e *FFmpegFrameExtractor) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe error: %w - %s", err, stderr.String())
	}

	output := stdout.String()
	idx := strings.Index(output, `"duration"`)
	if idx == -1 {
		return 0, nil
	}
	start := strings.Index(output[idx:], ":") + idx + 1
	end := strings.Index(output[start:], ",")
	if end == -1 {
		end = strings.Index(output[start:], "}")
	}
	durStr := strings.Trim(output[start:start+end], " \"\n")
	duration, _ := strconv.ParseFloat(durStr, 64)
	return duration, nil
}
