package service

import (
	"errors"
	"testing"
)

func TestValidateChapterBody(t *testing.T) {
	longBody := ""
	for i := 0; i < 200; i++ {
		longBody += "word "
	}

	tests := []struct {
		name    string
		title   string
		body    string
		wantErr bool
	}{
		{"valid chapter", "Getting Started", longBody, false},
		{"missing title", "", longBody, true},
		{"empty body", "Getting Started", "   ", true},
		{"too short", "Getting Started", "just a few words here", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateChapterBody(tt.title, tt.body, 150)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected rejection")
				}
				if !errors.Is(err, ErrContentRejected) {
					t.Errorf("expected ErrContentRejected, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateOutline(t *testing.T) {
	tests := []struct {
		name    string
		outline outlineContent
		count   int
		wantErr bool
	}{
		{
			name: "valid",
			outline: outlineContent{
				Title:    "The Five Day Launch",
				Chapters: []string{"One", "Two", "Three"},
			},
			count: 3,
		},
		{
			name: "missing title",
			outline: outlineContent{
				Chapters: []string{"One", "Two", "Three"},
			},
			count:   3,
			wantErr: true,
		},
		{
			name: "wrong chapter count",
			outline: outlineContent{
				Title:    "The Five Day Launch",
				Chapters: []string{"One", "Two"},
			},
			count:   3,
			wantErr: true,
		},
		{
			name: "blank chapter title",
			outline: outlineContent{
				Title:    "The Five Day Launch",
				Chapters: []string{"One", "  ", "Three"},
			},
			count:   3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOutline(&tt.outline, tt.count)
			if tt.wantErr && err == nil {
				t.Error("expected rejection")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSections(t *testing.T) {
	valid := supplementContent{
		Title: "Launch Workbook",
		Sections: []supplementSection{
			{Heading: "Week One", Items: []string{"a", "b", "c"}},
		},
	}
	if err := validateSections(&valid, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noSections := supplementContent{Title: "Launch Workbook"}
	if err := validateSections(&noSections, 3); err == nil {
		t.Error("expected rejection for empty document")
	}

	thinSection := supplementContent{
		Title: "Launch Workbook",
		Sections: []supplementSection{
			{Heading: "Week One", Items: []string{"a"}},
		},
	}
	if err := validateSections(&thinSection, 3); err == nil {
		t.Error("expected rejection for thin section")
	}
}
