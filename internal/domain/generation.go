package domain

import "time"

// Style enumerates the writing voices a generation can request.
type Style string

const (
	StyleCasual       Style = "casual"
	StyleProfessional Style = "professional"
	StyleFriendly     Style = "friendly"
	StyleFoodReview   Style = "food_review"
)

// Length enumerates target post lengths.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Mode selects between a single draft pass and a draft plus refinement pass.
type Mode string

const (
	ModeQuick   Mode = "quick"
	ModeQuality Mode = "quality"
)

// GenerationStatus enumerates the job lifecycle states. Transitions only move
// forward: running becomes completed or failed, never the reverse.
type GenerationStatus string

const (
	StatusRunning   GenerationStatus = "running"
	StatusCompleted GenerationStatus = "completed"
	StatusFailed    GenerationStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s GenerationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GenerationJob is the durable record of one topic-to-post generation run.
// Content is non-nil exactly when Status is completed.
type GenerationJob struct {
	ID             string
	Topic          string
	Keywords       []string
	Style          Style
	Length         Length
	Mode           Mode
	StyleProfileID *string
	AdditionalInfo string

	Title     string
	Content   *string
	CharCount int
	ReadTime  int
	Headings  []string
	SEOScore  int
	ImageURLs []string

	InputTokens  int
	OutputTokens int
	CostUSD      float64
	DurationSec  float64

	Status      GenerationStatus
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CompletionFields carries everything the orchestrator persists when a job
// finishes successfully.
type CompletionFields struct {
	Title        string
	Content      string
	CharCount    int
	ReadTime     int
	Headings     []string
	SEOScore     int
	ImageURLs    []string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	DurationSec  float64
}

// FailureFields carries the terminal bookkeeping for a failed job.
type FailureFields struct {
	Error        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	DurationSec  float64
}

// StyleProfile is a reusable writing-voice descriptor appended to the system
// prompt when a job references it.
type StyleProfile struct {
	ID          string
	Name        string
	Description string
	Profile     string
	SampleCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidStyle reports whether s names a known style.
func ValidStyle(s string) bool {
	switch Style(s) {
	case StyleCasual, StyleProfessional, StyleFriendly, StyleFoodReview:
		return true
	}
	return false
}

// ValidLength reports whether l names a known length.
func ValidLength(l string) bool {
	switch Length(l) {
	case LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

// ValidMode reports whether m names a known mode.
func ValidMode(m string) bool {
	switch Mode(m) {
	case ModeQuick, ModeQuality:
		return true
	}
	return false
}
