package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingAPIKey = errors.New("remove.bg API key is required for this mode")
	ErrNoInputs      = errors.New("no input files")
	ErrBatchRunning  = errors.New("a batch is already running")
	ErrUnknownMode   = errors.New("unknown output mode")
)

// Mode selects the output kind. It is decided once per job.
type Mode int

const (
	ModeStickerRemoveBG Mode = iota
	ModeStickerKeepBG
	ModePNGRemoveBG
	ModePNGKeepBG
)

// Modes lists every mode in the order the picker shows them.
var Modes = []Mode{ModeStickerRemoveBG, ModeStickerKeepBG, ModePNGRemoveBG, ModePNGKeepBG}

// RemoveBackground reports whether the mode goes through remove.bg.
func (m Mode) RemoveBackground() bool {
	return m == ModeStickerRemoveBG || m == ModePNGRemoveBG
}

// MakeSticker reports whether the output is a 512px WebP sticker.
func (m Mode) MakeSticker() bool {
	return m == ModeStickerRemoveBG || m == ModeStickerKeepBG
}

func (m Mode) String() string {
	switch m {
	case ModeStickerRemoveBG:
		return "sticker-removebg"
	case ModeStickerKeepBG:
		return "sticker"
	case ModePNGRemoveBG:
		return "png-removebg"
	case ModePNGKeepBG:
		return "png"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Label is the human readable name.
func (m Mode) Label() string {
	switch m {
	case ModeStickerRemoveBG:
		return "Telegram Sticker (remove background)"
	case ModeStickerKeepBG:
		return "Telegram Sticker (keep background)"
	case ModePNGRemoveBG:
		return "PNG (remove background only)"
	case ModePNGKeepBG:
		return "PNG (keep original)"
	default:
		return m.String()
	}
}

// ParseMode converts a mode name as printed by String back into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Job represents a single batch submission.
type Job struct {
	ID        string    `json:"job_id"`
	Files     []string  `json:"files"`
	Mode      Mode      `json:"mode"`
	OutputDir string    `json:"output_dir"`
	CreatedAt time.Time `json:"created_at"`
}

// FileResult holds the outcome of one input file.
type FileResult struct {
	InputPath  string
	OutputPath string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// OK reports whether the file produced an output.
func (r FileResult) OK() bool {
	return r.Error == ""
}

// BatchResult holds the outcome of a completed batch.
type BatchResult struct {
	Job         Job
	Files       []FileResult
	Succeeded   int
	Failed      int
	Cancelled   bool
	CompletedAt time.Time
}

// Summary is the one-line completion message.
func (r *BatchResult) Summary() string {
	return fmt.Sprintf("Done! %d/%d processed", r.Succeeded, len(r.Job.Files))
}

// EventKind tells the consumer what an Event carries.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFileDone
	EventFinished
)

// Event is emitted by the batch worker. Current is 1-based. Result and
// Err are only set on EventFinished.
type Event struct {
	Kind    EventKind
	JobID   string
	Current int
	Total   int
	File    FileResult
	Result  *BatchResult
	Err     error
}
