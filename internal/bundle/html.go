package bundle

import "strings"

// ModuleScripts returns the src attributes of <script type="module"> tags in
// document order. External URLs (anything with a scheme) are skipped; the
// bundler only owns project-local scripts.
func ModuleScripts(html string) []string {
	var srcs []string
	for _, tag := range scriptTags(html) {
		if !strings.EqualFold(attrValue(tag, "type"), "module") {
			continue
		}
		src := attrValue(tag, "src")
		if src == "" || strings.Contains(src, "://") || strings.HasPrefix(src, "//") {
			continue
		}
		srcs = append(srcs, src)
	}
	return srcs
}

// RewriteScripts replaces script src attributes according to the mapping.
// Keys are the original src values as they appear in the document.
func RewriteScripts(html string, mapping map[string]string) string {
	if len(mapping) == 0 {
		return html
	}
	for old, replacement := range mapping {
		for _, quote := range []string{`"`, `'`} {
			html = strings.ReplaceAll(html,
				"src="+quote+old+quote,
				"src="+quote+replacement+quote)
		}
	}
	return html
}

// scriptTags returns the raw contents of every <script ...> opening tag.
func scriptTags(html string) []string {
	var tags []string
	lower := strings.ToLower(html)
	pos := 0
	for {
		start := strings.Index(lower[pos:], "<script")
		if start < 0 {
			break
		}
		start += pos
		end := strings.Index(html[start:], ">")
		if end < 0 {
			break
		}
		tags = append(tags, html[start:start+end+1])
		pos = start + end + 1
	}
	return tags
}

// attrValue extracts a quoted attribute value from a raw tag. Returns "" when
// the attribute is absent or unquoted.
func attrValue(tag, name string) string {
	lower := strings.ToLower(tag)
	needle := " " + name + "="
	idx := strings.Index(lower, needle)
	if idx < 0 {
		return ""
	}
	rest := tag[idx+len(needle):]
	if rest == "" {
		return ""
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return ""
	}
	return rest[1 : 1+end]
}
