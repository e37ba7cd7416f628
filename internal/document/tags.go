package document

import "strings"

// CleanTags trims each tag, drops any that are empty after trimming, and
// collapses duplicates while preserving first-occurrence order. Case is
// preserved; tag matching elsewhere is case-sensitive.
func CleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// ParseTagList splits a comma-separated tag string and cleans the result.
// Used by surfaces that take tags as a single text field.
func ParseTagList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return CleanTags(strings.Split(s, ","))
}
