package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// DescriptionLength is the default length of a note description.
const DescriptionLength = 300

// LocalOrigin is the address PocketBase has when it runs next to the app.
// File URLs stored inside note content use it.
const LocalOrigin = "http://127.0.0.1:8090"

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Description turns HTML into plain text of at most maxLength characters.
func Description(htmlContent string, maxLength int) string {
	text := tagPattern.ReplaceAllString(htmlContent, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if maxLength >= 0 && len(runes) > maxLength {
		return string(runes[:maxLength])
	}
	return text
}

// RewriteOrigin replaces every occurrence of the from origin with to.
// Content is returned unchanged when either origin is empty.
func RewriteOrigin(content, from, to string) string {
	if content == "" || from == "" || to == "" || from == to {
		return content
	}
	return strings.ReplaceAll(content, from, to)
}

var (
	imageExtensions = []string{"png", "jpg", "jpeg", "gif", "webp", "bmp", "tiff", "tif"}
	videoExtensions = []string{"mp4", "webm", "mov", "avi", "mkv", "3gp", "ogg"}
	audioExtensions = []string{"mp3", "wav", "aac"}
)

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// MediaEmbed returns the HTML that shows an uploaded file inside a note.
// An empty URL or name yields "".
func MediaEmbed(mime, fileURL, name string) string {
	if fileURL == "" || name == "" {
		return ""
	}
	src := html.EscapeString(fileURL)
	typ := html.EscapeString(mime)
	label := html.EscapeString(name)

	switch {
	case strings.Contains(mime, "image") || containsAny(name, imageExtensions):
		return fmt.Sprintf(`<img src="%s" type="%s">`, src, typ)
	case strings.Contains(name, "svg"):
		return fmt.Sprintf(`<img src="%s" type="svg" />`, src)
	case strings.Contains(mime, "video") || containsAny(name, videoExtensions):
		return fmt.Sprintf(`<video style="width:100%%" controls><source src="%s" type="%s" />Your browser does not support the video tag.</video>`, src, typ)
	case mime == "audio/mpeg" || containsAny(name, audioExtensions):
		return fmt.Sprintf(`<div style="text-align: center;"><audio class="audio-player" controls style="width: 80vw; max-width: 400px;"><source src="%s" type="%s"><a href="%s" target="_blank">%s</a>.</audio></div>`, src, typ, src, label)
	case mime == "application/pdf":
		return fmt.Sprintf(`<a href="%s" target="_blank">%s</a><iframe src="%s" style="width: 80vw; min-height: 800px; height: 100vh; max-width: 900px; margin: auto; display: block;" frameborder="0"></iframe>`, src, label, src)
	default:
		return fmt.Sprintf(`<a href="%s" type="%s">%s</a>`, src, typ, label)
	}
}
