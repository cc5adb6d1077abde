package amdm

import (
	"time"
)

// LyricsResult represents the extracted lyrics result
type LyricsResult struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SectionType represents different song sections
type SectionType string

const (
	SectionVerse  SectionType = "Куплет"
	SectionChorus SectionType = "Припев"
	SectionBridge SectionType = "Переход"
	SectionIntro  SectionType = "Вступление"
	SectionSolo   SectionType = "Проигрыш"
	SectionOutro  SectionType = "Кода"
)

// ProcessingConfig holds configuration for text processing
type ProcessingConfig struct {
	AllowedSections  []SectionType
	UnwantedSections []SectionType
	// MaxLineBreaks caps consecutive line breaks in the result
	MaxLineBreaks int
	// KeepSectionMarkers keeps "[Куплет]:" style lines; otherwise an allowed
	// section only starts a new paragraph
	KeepSectionMarkers bool
}

func DefaultConfig() ProcessingConfig {
	return ProcessingConfig{
		AllowedSections:  []SectionType{SectionVerse, SectionChorus, SectionBridge},
		UnwantedSections: []SectionType{SectionIntro, SectionSolo, SectionOutro},
		MaxLineBreaks:    2,
	}
}
