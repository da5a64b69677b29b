package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// FFmpeg extracts frames by running the ffmpeg binary.
type FFmpeg struct {
	// Path defaults to "ffmpeg" from PATH.
	Path string
}

var _ FrameExtractor = FFmpeg{}

// ExtractFrame writes video to a temporary file because most containers need
// seeking, then asks ffmpeg for a single PNG frame on stdout.
func (f FFmpeg) ExtractFrame(ctx context.Context, video []byte, offset time.Duration) ([]byte, error) {
	tmp, err := os.CreateTemp("", "curator-video-*")
	if err != nil {
		return nil, fmt.Errorf("os.CreateTemp > %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(video); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("tmp.Write > %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("tmp.Close > %w", err)
	}

	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, ffmpegArgs(tmp.Name(), offset)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", path, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no frame at %s", path, offset)
	}
	return stdout.Bytes(), nil
}

func ffmpegArgs(input string, offset time.Duration) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
		"-i", input,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	}
}
