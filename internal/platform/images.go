package platform

import (
	"regexp"
	"strings"
)

var (
	filenameRe = regexp.MustCompile(`[^A-Za-z0-9_\-.]`)
	linkRe     = regexp.MustCompile(`https?://\S+`)
	imageExtRe = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|gif|apng|json)$`)
)

// SanitizeFilename strips characters unsafe for an attachment filename,
// falling back to image.png for empty results.
func SanitizeFilename(name string) string {
	name = filenameRe.ReplaceAllString(name, "_")
	if name == "" || strings.Trim(name, "_") == "" {
		return "image.png"
	}
	return name
}

// IsImageURL reports whether the URL path ends in a known image extension.
func IsImageURL(url string) bool {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return imageExtRe.MatchString(url)
}

func lastSegment(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// ImageCandidate is one downloadable image discovered in a message.
type ImageCandidate struct {
	URL      string
	Filename string
}

// ImageCandidates gathers every image reference in a message: attachments
// first, then embed images and thumbnails, then image links inside embed
// descriptions. When none of those yield anything, raw image links in the
// message content are used as a fallback (common with other bots' posts).
func ImageCandidates(m *Message) []ImageCandidate {
	var out []ImageCandidate
	seen := make(map[string]bool)
	add := func(url, filename string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		out = append(out, ImageCandidate{URL: url, Filename: SanitizeFilename(filename)})
	}

	for _, att := range m.Attachments {
		add(att.URL, att.Filename)
	}
	for _, emb := range m.Embeds {
		if emb.Image != nil {
			add(emb.Image.URL, lastSegment(emb.Image.URL))
		}
		if emb.Thumbnail != nil {
			add(emb.Thumbnail.URL, lastSegment(emb.Thumbnail.URL))
		}
		for _, link := range linkRe.FindAllString(emb.Description, -1) {
			if IsImageURL(link) {
				add(link, lastSegment(link))
			}
		}
	}
	if len(out) == 0 {
		for _, link := range linkRe.FindAllString(m.Content, -1) {
			if IsImageURL(link) {
				add(link, lastSegment(link))
			}
		}
	}
	return out
}
