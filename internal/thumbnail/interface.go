package thumbnail

import (
	"context"
	"time"
)

//go:generate mockgen -source=interface.go -destination=../mocks/thumbnail/mock_frame_extractor.go -package=mock_thumbnail

// FrameExtractor renders one frame of a video as PNG.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, video []byte, offset time.Duration) ([]byte, error)
}
