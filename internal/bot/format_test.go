package bot

import (
	"strings"
	"testing"

	"github.com/Nomadcxx/cinepost/internal/naming"
	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

func sampleCandidate() tmdb.Candidate {
	return tmdb.Candidate{
		ID:        603,
		Title:     "The Matrix",
		Year:      1999,
		Rating:    8.2,
		VoteCount: 24103,
		Runtime:   136,
		Genres:    []string{"Action", "Science Fiction", "Thriller", "Drama"},
		Overview:  "A computer hacker learns about the true nature of reality.",
	}
}

func TestChannelCaption(t *testing.T) {
	got := channelCaption(sampleCandidate())

	for _, want := range []string{
		"🎞️ MOVIE: The Matrix (1999)",
		"⭐⭐⭐⭐⭐ 8.2/10",
		"(24,103 votes)",
		"⏱ 2h 16m",
		"Action, Science Fiction, Thriller",
		"A computer hacker learns about the true nature of reality.",
		"#TheMatrix #1999 #Action #ScienceFiction #MustWatch #Movies #Cinepost",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("caption missing %q\n%s", want, got)
		}
	}

	// Only the top three genres appear in the genre line.
	if strings.Contains(got, "Thriller, Drama") {
		t.Error("caption lists more than three genres")
	}
}

func TestChannelCaptionNoExtras(t *testing.T) {
	got := channelCaption(tmdb.Candidate{Title: "Obscure Film", Rating: 2.0})

	for _, want := range []string{
		"🎞️ MOVIE: Obscure Film</b>",
		"⭐ 2.0/10",
		"Unknown",
		"No synopsis available.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("caption missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "votes") {
		t.Error("caption shows votes with a zero vote count")
	}
	if strings.Contains(got, "⏱") {
		t.Error("caption shows runtime with no runtime")
	}
}

func TestChannelCaptionTruncatesSynopsis(t *testing.T) {
	c := sampleCandidate()
	c.Overview = strings.Repeat("x", 600)

	got := channelCaption(c)
	if !strings.Contains(got, strings.Repeat("x", 497)+"...") {
		t.Error("long synopsis not truncated to 500 runes")
	}
	if strings.Contains(got, strings.Repeat("x", 498)) {
		t.Error("synopsis longer than the limit")
	}
}

func TestChannelCaptionEscapesHTML(t *testing.T) {
	c := sampleCandidate()
	c.Title = "Fast & <Furious>"

	got := channelCaption(c)
	if !strings.Contains(got, "Fast &amp; &lt;Furious&gt;") {
		t.Error("title not HTML-escaped")
	}
}

func TestSelectionCaption(t *testing.T) {
	c1 := sampleCandidate()
	c2 := tmdb.Candidate{Title: "The Matrix Reloaded", Year: 2003, Rating: 7.0,
		Overview: strings.Repeat("y", 150)}

	got := selectionCaption([]tmdb.Candidate{c1, c2})

	if !strings.Contains(got, "<b>1.</b> The Matrix (1999)") {
		t.Errorf("first entry missing:\n%s", got)
	}
	if !strings.Contains(got, "<b>2.</b> The Matrix Reloaded (2003)") {
		t.Errorf("second entry missing:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("y", 97)+"...") {
		t.Error("overview snippet not truncated to 100 runes")
	}
}

func TestDetectedPrompt(t *testing.T) {
	got := detectedPrompt(naming.Guess{Title: "Inception", Year: 2010})
	if !strings.Contains(got, "<code>Inception (2010)</code>") {
		t.Errorf("prompt = %q", got)
	}

	got = detectedPrompt(naming.Guess{Title: "Inception"})
	if !strings.Contains(got, "<code>Inception</code>") {
		t.Errorf("prompt without year = %q", got)
	}
}

func TestCandidateButton(t *testing.T) {
	got := candidateButton(0, sampleCandidate())
	if got != "1. The Matrix (1999) ⭐8.2" {
		t.Errorf("button = %q", got)
	}
}

func TestRatingStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{9.0, "⭐⭐⭐⭐⭐"},
		{8.0, "⭐⭐⭐⭐⭐"},
		{7.0, "⭐⭐⭐⭐"},
		{5.5, "⭐⭐⭐"},
		{4.0, "⭐⭐"},
		{1.0, "⭐"},
	}
	for _, tt := range tests {
		if got := ratingStars(tt.rating); got != tt.want {
			t.Errorf("ratingStars(%.1f) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestRuntimeString(t *testing.T) {
	if got := runtimeString(136); got != "2h 16m" {
		t.Errorf("runtimeString(136) = %q", got)
	}
	if got := runtimeString(45); got != "45m" {
		t.Errorf("runtimeString(45) = %q", got)
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{24103, "24,103"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
