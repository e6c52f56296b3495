package mail

import (
	"strings"
	"testing"
	"time"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

func TestRenderNotes(t *testing.T) {
	lesson := "Prompt engineering basics"
	notes := []model.Note{
		{Title: "Key takeaways", Content: "Context windows matter.", Tags: []string{"ai", "llm"}, LessonTitle: &lesson},
		{Title: "Follow up", Content: "Read the retrieval chapter."},
	}

	body, err := RenderNotes("Ayşe", time.Date(2026, time.March, 3, 14, 30, 0, 0, time.UTC), notes)
	if err != nil {
		t.Fatalf("RenderNotes: %v", err)
	}
	for _, want := range []string{"Ayşe", "2 note(s)", "Key takeaways", "Prompt engineering basics", "ai, llm", "Follow up"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestRenderNotesEscapesHTML(t *testing.T) {
	notes := []model.Note{{Title: "<script>alert(1)</script>", Content: "safe"}}
	body, err := RenderNotes("User", time.Now(), notes)
	if err != nil {
		t.Fatalf("RenderNotes: %v", err)
	}
	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Fatal("note title rendered unescaped")
	}
}
