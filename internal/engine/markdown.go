package engine

import (
	"path"
	"regexp"
	"strings"
)

var (
	reBlankRuns     = regexp.MustCompile(`\n{3,}`)
	reTrailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// Page is one rendered page: figures first, then recognised text.
type Page struct {
	Figures []string // file names inside the image directory
	Text    string
}

// Pages is a PipeResult assembled page by page by in-process drivers.
type Pages []Page

// Markdown joins pages with blank lines, emitting each figure as an image
// link relative to imageDirName.
func (p Pages) Markdown(imageDirName string) (string, error) {
	var b strings.Builder
	for _, page := range p {
		for _, fig := range page.Figures {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(ImageLink(imageDirName, fig))
		}
		text := NormalizeText(page.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	if b.Len() == 0 {
		return "", nil
	}
	b.WriteString("\n")
	return b.String(), nil
}

// ImageLink returns a Markdown image reference to name inside dirName.
func ImageLink(dirName, name string) string {
	return "![](" + path.Join(dirName, name) + ")"
}

// NormalizeText trims trailing spaces, form feeds and runs of blank lines.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\f", "\n\n")
	s = reTrailingSpace.ReplaceAllString(s, "\n")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// RewriteImageRefs points Markdown image links under dir "from" at dir "to".
func RewriteImageRefs(md, from, to string) string {
	if from == to {
		return md
	}
	re := regexp.MustCompile(`(!\[[^\]]*\]\()` + regexp.QuoteMeta(from) + `/`)
	return re.ReplaceAllString(md, "${1}"+to+"/")
}
