// Package outline derives a chapter/section/article table of contents from
// the plain text of a Vietnamese legal document
package outline

import (
	"regexp"
	"strings"

	"chatiip-backend/models"

	"golang.org/x/text/unicode/norm"
)

// Level identifies which heading a rule recognizes
type Level int

const (
	LevelChapter Level = iota
	LevelSection
	LevelArticle
)

type rule struct {
	level   Level
	pattern *regexp.Regexp
	label   func(number, name string) string
	key     func(number string) string
}

// rules are tried in order; the first match wins
var rules = []rule{
	{
		level:   LevelChapter,
		pattern: regexp.MustCompile(`(?i)^(CHƯƠNG|CHUONG)\s+([IVXLC0-9]+)\b[:\-.]?\s*(.*)$`),
		label:   func(n, name string) string { return withName("Chương "+n, " - ", name) },
		key:     func(n string) string { return "chuong_" + n },
	},
	{
		level:   LevelSection,
		pattern: regexp.MustCompile(`(?i)^(MỤC|MUC)\s+([IVXLC0-9]+)\b[:\-.]?\s*(.*)$`),
		label:   func(n, name string) string { return withName("Mục "+n, " - ", name) },
		key:     func(n string) string { return "muc_" + n },
	},
	{
		level:   LevelArticle,
		pattern: regexp.MustCompile(`(?i)^(ĐIỀU|DIEU)\s+(\d+[A-Z]?)\b[:\-.]?\s*(.*)$`),
		label:   func(n, name string) string { return withName("Điều "+n, ": ", name) },
		key:     func(n string) string { return "dieu_" + n },
	},
}

func withName(head, sep, name string) string {
	if name == "" {
		return head
	}
	return head + sep + name
}

type node struct {
	label    string
	key      string
	children []*node
}

// Heading is a recognized structural line
type Heading struct {
	Level Level
	Label string
	Key   string
}

// Match reports the heading recognized on a single trimmed line
func Match(line string) (Heading, bool) {
	line = norm.NFC.String(strings.TrimSpace(line))
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		number := m[2]
		name := strings.TrimSpace(strings.TrimLeft(m[3], ":-.–— \t"))
		return Heading{Level: r.level, Label: r.label(number, name), Key: r.key(number)}, true
	}
	return Heading{}, false
}

// Build scans text line by line and returns the outline forest. Lines that
// are not headings are body text and ignored. The result is never nil
func Build(text string) models.Outline {
	var (
		roots   []*node
		chapter *node
		section *node
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h, ok := Match(line)
		if !ok {
			continue
		}
		n := &node{label: h.Label, key: h.Key}
		switch h.Level {
		case LevelChapter:
			roots = append(roots, n)
			chapter, section = n, nil
		case LevelSection:
			if chapter != nil {
				chapter.children = append(chapter.children, n)
			} else {
				roots = append(roots, n)
			}
			section = n
		case LevelArticle:
			switch {
			case section != nil:
				section.children = append(section.children, n)
			case chapter != nil:
				chapter.children = append(chapter.children, n)
			default:
				roots = append(roots, n)
			}
		}
	}

	return freeze(roots)
}

func freeze(nodes []*node) models.Outline {
	out := make(models.Outline, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, models.OutlineNode{
			Label:    n.label,
			Key:      n.key,
			Children: []models.OutlineNode(freeze(n.children)),
		})
	}
	return out
}
