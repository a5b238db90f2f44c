package render

import "time"

// TileStat describes the work one worker did for a frame.
type TileStat struct {
	// Worker index; the tile covers columns x with x % workers == Index.
	Index int

	Columns int
	Hits    int

	RenderTime time.Duration
}

// FrameStats summarizes the last rendered frame.
type FrameStats struct {
	Width  int
	Height int

	Tiles []TileStat
	Hits  int

	// Wall time from dispatch until the last tile was scattered.
	RenderTime time.Duration
}

// Pixels returns the frame area.
func (s FrameStats) Pixels() int { return s.Width * s.Height }

// HitRatio returns the fraction of pixels that hit an object.
func (s FrameStats) HitRatio() float64 {
	if s.Pixels() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Pixels())
}
