package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContentRejected indicates generated output failed structural or length
// checks. Treated as a retryable sub-task failure, never silently accepted.
var ErrContentRejected = errors.New("generated content rejected")

// wordCount counts whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// validateChapterBody checks a chapter section for presence and minimum length.
func validateChapterBody(title, body string, minWords int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: missing chapter title", ErrContentRejected)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: empty chapter body", ErrContentRejected)
	}
	if n := wordCount(body); n < minWords {
		return fmt.Errorf("%w: chapter %q has %d words, need at least %d", ErrContentRejected, title, n, minWords)
	}
	return nil
}

// validateOutline checks the outline for the expected chapter count.
func validateOutline(o *outlineContent, chapterCount int) error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrContentRejected)
	}
	if len(o.Chapters) != chapterCount {
		return fmt.Errorf("%w: expected %d chapter titles, got %d", ErrContentRejected, chapterCount, len(o.Chapters))
	}
	for i, title := range o.Chapters {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("%w: chapter title %d is empty", ErrContentRejected, i+1)
		}
	}
	return nil
}

// validateSections checks a supplementary document's section structure.
func validateSections(doc *supplementContent, minItems int) error {
	if strings.TrimSpace(doc.Title) == "" {
		return fmt.Errorf("%w: missing document title", ErrContentRejected)
	}
	if len(doc.Sections) == 0 {
		return fmt.Errorf("%w: document has no sections", ErrContentRejected)
	}
	for _, section := range doc.Sections {
		if strings.TrimSpace(section.Heading) == "" {
			return fmt.Errorf("%w: section heading missing", ErrContentRejected)
		}
		if len(section.Items) < minItems {
			return fmt.Errorf("%w: section %q has %d items, need at least %d", ErrContentRejected, section.Heading, len(section.Items), minItems)
		}
	}
	return nil
}
