// Package brief turns page text into a structured research brief and answers
// questions about a page, both through an llm.CallFunc.
package brief

import "errors"

const (
	// MinTextLength is the page text length (in characters) a brief needs.
	// Shorter pages get no brief.
	MinTextLength = 50

	// MaxInputChars caps the page text submitted for a brief.
	MaxInputChars = 12000

	// MaxContextChars caps the page context submitted with a question.
	MaxContextChars = 10000
)

var (
	// ErrTextTooShort is returned when page text is not longer than MinTextLength.
	ErrTextTooShort = errors.New("page text too short for a brief")

	// ErrMalformedBrief is returned when the model reply is not a valid brief.
	ErrMalformedBrief = errors.New("malformed brief")
)

// Complexity grades how demanding a page is to read.
type Complexity string

const (
	ComplexitySimple       Complexity = "Simple"
	ComplexityIntermediate Complexity = "Intermediate"
	ComplexityAdvanced     Complexity = "Advanced"
)

// Known reports whether c is one of the defined grades. Models occasionally
// answer with other labels; those are kept as-is.
func (c Complexity) Known() bool {
	switch c {
	case ComplexitySimple, ComplexityIntermediate, ComplexityAdvanced:
		return true
	}
	return false
}

// Brief is the structured research brief of a page.
type Brief struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Entities  []Entity `json:"entities"`
	Metrics   Metrics  `json:"metrics"`
}

// Entity is a person, organization, place or concept named on the page.
type Entity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Metrics struct {
	// ReadingTime is the estimated reading time in minutes.
	ReadingTime float64    `json:"readingTime"`
	Complexity  Complexity `json:"complexity"`
	Sentiment   string     `json:"sentiment"`
}
