package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/Nomadcxx/cinepost/internal/naming"
	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

const (
	captionDivider = "━━━━━━━━━━━━━━━━━━━━"
	captionFooter  = "<i>Powered by Cinepost 🤖</i>"

	maxSynopsisRunes = 500
	maxSnippetRunes  = 100
)

// channelCaption builds the HTML caption posted to the channel alongside
// the poster and file.
func channelCaption(c tmdb.Candidate) string {
	yearStr := ""
	if c.Year > 0 {
		yearStr = fmt.Sprintf(" (%d)", c.Year)
	}

	rating := fmt.Sprintf("%s %.1f/10", ratingStars(c.Rating), c.Rating)
	if c.VoteCount > 0 {
		rating += fmt.Sprintf(" (%s votes)", groupDigits(c.VoteCount))
	}

	runtime := ""
	if c.Runtime > 0 {
		runtime = " | ⏱ " + runtimeString(c.Runtime)
	}

	genres := "Unknown"
	if len(c.Genres) > 0 {
		genres = strings.Join(topGenres(c.Genres, 3), ", ")
	}

	synopsis := c.Overview
	if synopsis == "" {
		synopsis = "No synopsis available."
	}
	synopsis = truncateRunes(synopsis, maxSynopsisRunes)

	var b strings.Builder
	fmt.Fprintf(&b, "<b>🎞️ MOVIE: %s%s</b>\n", html.EscapeString(c.Title), yearStr)
	fmt.Fprintf(&b, "<b>✨ Rating:</b> %s%s\n", rating, runtime)
	fmt.Fprintf(&b, "<b>🎭 Genre:</b> %s\n", html.EscapeString(genres))
	b.WriteString(captionDivider + "\n")
	b.WriteString("💬 <b>Synopsis</b>\n")
	fmt.Fprintf(&b, "<blockquote><i>%s</i></blockquote>\n", html.EscapeString(synopsis))
	b.WriteString(captionDivider + "\n\n")
	b.WriteString(captionFooter + "\n\n")
	b.WriteString(hashtags(c))
	return b.String()
}

// selectionCaption lists candidates for the pick-one keyboard.
func selectionCaption(candidates []tmdb.Candidate) string {
	var b strings.Builder
	b.WriteString("🎬 <b>Select the correct movie:</b>\n\n")

	for i, c := range candidates {
		yearStr := ""
		if c.Year > 0 {
			yearStr = fmt.Sprintf(" (%d)", c.Year)
		}
		fmt.Fprintf(&b, "<b>%d.</b> %s%s\n", i+1, html.EscapeString(c.Title), yearStr)
		fmt.Fprintf(&b, "   ⭐ %.1f/10", c.Rating)
		if c.Runtime > 0 {
			fmt.Fprintf(&b, " | ⏱ %s", runtimeString(c.Runtime))
		}
		b.WriteString("\n")
		if len(c.Genres) > 0 {
			fmt.Fprintf(&b, "   🎭 %s\n", html.EscapeString(strings.Join(topGenres(c.Genres, 3), ", ")))
		}
		if c.Overview != "" {
			fmt.Fprintf(&b, "   <i>%s</i>\n", html.EscapeString(truncateRunes(c.Overview, maxSnippetRunes)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// detectedPrompt asks the uploader to confirm a parsed title.
func detectedPrompt(guess naming.Guess) string {
	return fmt.Sprintf("📽️ <b>Detected Movie:</b>\n<code>%s</code>\n\nChoose an action:",
		html.EscapeString(guess.String()))
}

// candidateButton labels one pick-one keyboard button.
func candidateButton(index int, c tmdb.Candidate) string {
	yearStr := ""
	if c.Year > 0 {
		yearStr = fmt.Sprintf(" (%d)", c.Year)
	}
	return fmt.Sprintf("%d. %s%s ⭐%.1f", index+1, c.Title, yearStr, c.Rating)
}

func ratingStars(rating float64) string {
	switch {
	case rating >= 8.0:
		return "⭐⭐⭐⭐⭐"
	case rating >= 6.5:
		return "⭐⭐⭐⭐"
	case rating >= 5.0:
		return "⭐⭐⭐"
	case rating >= 3.5:
		return "⭐⭐"
	default:
		return "⭐"
	}
}

func runtimeString(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

func topGenres(genres []string, n int) []string {
	if len(genres) > n {
		return genres[:n]
	}
	return genres
}

// hashtags builds the tag line: title, year, up to two genres, a quality
// tag by rating, then the general tags.
func hashtags(c tmdb.Candidate) string {
	var tags []string

	if tag := alnumOnly(c.Title); tag != "" {
		tags = append(tags, "#"+tag)
	}
	if c.Year > 0 {
		tags = append(tags, fmt.Sprintf("#%d", c.Year))
	}
	for _, g := range topGenres(c.Genres, 2) {
		if tag := alnumOnly(g); tag != "" {
			tags = append(tags, "#"+tag)
		}
	}
	if c.Rating >= 8.0 {
		tags = append(tags, "#MustWatch")
	} else if c.Rating >= 7.0 {
		tags = append(tags, "#Recommended")
	}
	tags = append(tags, "#Movies", "#Cinepost")

	return strings.Join(tags, " ")
}

func alnumOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// groupDigits formats an int with thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
