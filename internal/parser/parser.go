// Package parser reads prompt files: Markdown with optional YAML frontmatter
// naming the title, category and tags. The body is the prompt content.
package parser

import (
	"bytes"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Result holds the output of parsing a prompt file.
type Result struct {
	Frontmatter map[string]any
	Title       string
	Category    string
	Tags        []string
	Content     string
}

// Parse extracts frontmatter and content from raw Markdown bytes. When the
// title comes from a leading H1 heading, that heading is not part of the content.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	title := stringField(fm, "title")
	if title == "" {
		var rest string
		title, rest = leadingHeading(body)
		if title != "" {
			body = rest
		}
	}

	return &Result{
		Frontmatter: fm,
		Title:       title,
		Category:    stringField(fm, "category"),
		Tags:        extractTags(fm),
		Content:     strings.TrimSpace(body),
	}, nil
}

// TitleFromPath derives a title from a file name: "code-review_checklist.md"
// becomes "code review checklist".
func TitleFromPath(p string) string {
	stem := strings.TrimSuffix(path.Base(p), path.Ext(p))
	return strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(stem))
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no valid frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: the whole file is content.
		return nil, string(data)
	}
	return fm, body
}

func stringField(fm map[string]any, key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// extractTags reads "tags" as a YAML list or a comma-separated string.
func extractTags(fm map[string]any) []string {
	var raw []string
	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = strings.Split(v, ",")
	}

	seen := make(map[string]struct{}, len(raw))
	out := []string{}
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// leadingHeading returns the text of an H1 on the first non-blank line and
// the body after it. It returns an empty title when the body starts otherwise.
func leadingHeading(body string) (string, string) {
	rest := strings.TrimLeft(body, " \t\r\n")
	line, after, _ := strings.Cut(rest, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "# ") {
		return "", body
	}
	return strings.TrimSpace(line[2:]), after
}
