package email

import (
	"strings"
	"testing"
)

func TestRenderEmailTemplates(t *testing.T) {
	for _, name := range []string{"first_touch.html", "reminder.html"} {
		t.Run(name, func(t *testing.T) {
			out, err := renderEmailTemplate(name, lifecycleEmailData{
				baseEmailData: baseEmailData{
					Title:    "Test subject",
					Heading:  "Hello there",
					CTALabel: "Reply to us",
					CTAURL:   "https://example.com/api/v1/leads/reply/abc",
				},
				LeadName: "Alice Johnson",
			})
			if err != nil {
				t.Fatalf("renderEmailTemplate returned error: %v", err)
			}

			for _, want := range []string{"Alice Johnson", "Hello there", "https://example.com/api/v1/leads/reply/abc", "Reply to us"} {
				if !strings.Contains(out, want) {
					t.Errorf("rendered %s missing %q", name, want)
				}
			}
		})
	}
}

func TestRenderEmailTemplateEscapesLeadName(t *testing.T) {
	out, err := renderEmailTemplate("first_touch.html", lifecycleEmailData{
		baseEmailData: baseEmailData{Title: "t", Heading: "h"},
		LeadName:      "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("renderEmailTemplate returned error: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Error("lead name must be HTML-escaped")
	}
}

func TestRenderEmailTemplateUnknownName(t *testing.T) {
	if _, err := renderEmailTemplate("missing.html", lifecycleEmailData{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
