package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// scriptedCompleter returns canned responses in call order.
type scriptedCompleter struct {
	responses []string
	calls     int
}

func (s *scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if s.calls >= len(s.responses) {
		return "", nil
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func longBody(words int) string {
	return strings.TrimSpace(strings.Repeat("insight ", words))
}

func jsonResponse(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal canned response: %v", err)
	}
	return string(b)
}

func TestLeadMagnetRunner_PlanRequiresInput(t *testing.T) {
	r := NewLeadMagnetRunner(&scriptedCompleter{}, nil, 150)

	tests := []struct {
		name  string
		input domain.JSONMap
	}{
		{"missing niche", domain.JSONMap{"audience": "new coaches"}},
		{"missing audience", domain.JSONMap{"niche": "business coaching"}},
		{"missing product", domain.JSONMap{"niche": "business coaching", "audience": "new coaches"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Plan(context.Background(), &domain.Job{InputData: tt.input})
			if err == nil {
				t.Error("expected input validation error")
			}
		})
	}
}

func TestLeadMagnetRunner_PlanChapterBounds(t *testing.T) {
	r := NewLeadMagnetRunner(&scriptedCompleter{}, nil, 150)

	plan := func(chapters float64) ([]jobs.Unit, error) {
		return r.Plan(context.Background(), &domain.Job{InputData: domain.JSONMap{
			"niche":      "business coaching",
			"audience":   "new coaches",
			"chapters":   chapters,
			"product_id": uuid.New().String(),
		}})
	}

	tests := []struct {
		name     string
		chapters float64
		wantErr  bool
	}{
		{"negative", -5, true},
		{"zero", 0, true},
		{"far too many", 100000, true},
		{"lower bound", 1, false},
		{"upper bound", 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := plan(tt.chapters)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for chapters=%v", tt.chapters)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// outline + chapters + bridge + CTA
			if want := int(tt.chapters) + 3; len(units) != want {
				t.Errorf("expected %d units, got %d", want, len(units))
			}
		})
	}
}

func TestLeadMagnetRunner_PlanUnitSequence(t *testing.T) {
	r := NewLeadMagnetRunner(&scriptedCompleter{}, nil, 150)

	units, err := r.Plan(context.Background(), &domain.Job{InputData: domain.JSONMap{
		"niche":      "business coaching",
		"audience":   "new coaches",
		"chapters":   float64(2),
		"product_id": uuid.New().String(),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// outline, chapter 1, chapter 2, bridge, call to action
	if len(units) != 5 {
		t.Fatalf("expected 5 units, got %d", len(units))
	}
	if units[0].Name != "outline" || units[3].Name != "bridge" {
		t.Errorf("unexpected unit order: %v, %v", units[0].Name, units[3].Name)
	}
	last := units[len(units)-1]
	if last.Name != "call to action" || !last.Optional {
		t.Errorf("expected optional CTA last, got %q optional=%v", last.Name, last.Optional)
	}
	for _, u := range units[:len(units)-1] {
		if u.Optional {
			t.Errorf("unit %q must be mandatory", u.Name)
		}
	}
}

func TestLeadMagnetRunner_EndToEnd(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := repository.NewProductRepository(db)

	funnelID := uuid.New().String()
	if err := repository.NewFunnelRepository(db).Create(ctx, &domain.Funnel{
		ID:      funnelID,
		OwnerID: "owner-1",
		Name:    "Coaching Funnel",
		Status:  domain.FunnelStatusDraft,
	}); err != nil {
		t.Fatalf("failed to seed funnel: %v", err)
	}

	productID := uuid.New().String()
	if err := products.Create(ctx, &domain.Product{
		ID:       productID,
		FunnelID: funnelID,
		OwnerID:  "owner-1",
		Kind:     domain.ProductKindLeadMagnet,
		Status:   domain.ProductStatusGenerating,
	}); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	llm := &scriptedCompleter{responses: []string{
		// Fenced output exercises the decode fallback chain
		"```json\n" + jsonResponse(t, map[string]interface{}{
			"title":    "The Coaching Launch",
			"subtitle": "From zero to first client",
			"hook":     "Your first client in thirty days",
			"chapters": []string{"Find your niche", "Make the offer"},
		}) + "\n```",
		jsonResponse(t, map[string]interface{}{"title": "Find your niche", "body": longBody(160)}),
		jsonResponse(t, map[string]interface{}{"title": "Make the offer", "body": longBody(160)}),
		jsonResponse(t, map[string]interface{}{"title": "Putting it together", "body": longBody(60)}),
		jsonResponse(t, map[string]interface{}{"headline": "Ready for more?", "body": "Book a call.", "button_text": "Book now"}),
	}}

	r := NewLeadMagnetRunner(llm, products, 150)
	job := &domain.Job{
		ID:      uuid.New().String(),
		OwnerID: "owner-1",
		JobType: domain.JobTypeLeadMagnetContent,
		InputData: domain.JSONMap{
			"niche":      "business coaching",
			"audience":   "new coaches",
			"chapters":   float64(2),
			"product_id": productID,
		},
	}

	units, err := r.Plan(ctx, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outputs := make(map[string]interface{}, len(units))
	for _, u := range units {
		out, err := u.Run(ctx, job, outputs)
		if err != nil {
			t.Fatalf("unit %q failed: %v", u.Name, err)
		}
		if u.Validate != nil {
			if err := u.Validate(out); err != nil {
				t.Fatalf("unit %q output rejected: %v", u.Name, err)
			}
		}
		outputs[u.Name] = out
	}

	result, err := r.Finalize(ctx, job, outputs)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result["product_id"] != productID {
		t.Errorf("expected product id in result, got %v", result["product_id"])
	}

	// The dual write is the durable outcome
	product, err := products.GetByID(ctx, productID, "owner-1")
	if err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if product.Status != domain.ProductStatusReady {
		t.Errorf("expected product ready, got %s", product.Status)
	}
	if product.Title != "The Coaching Launch" {
		t.Errorf("expected product title written, got %q", product.Title)
	}
	content, ok := product.GeneratedContent["lead_magnet"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected lead_magnet content on product, got %v", product.GeneratedContent)
	}
	chapters, ok := content["chapters"].([]interface{})
	if !ok || len(chapters) != 2 {
		t.Errorf("expected 2 chapters on product, got %v", content["chapters"])
	}
	if _, ok := content["cta"]; !ok {
		t.Error("expected CTA in assembled content")
	}
}
