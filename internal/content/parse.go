package content

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	slug "github.com/goliatone/go-slug"
)

// envelope is the YAML frontmatter shape shared by all collections. Unknown
// keys land in Extra and are preserved, not rejected.
type envelope struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Date        time.Time      `yaml:"date"`
	Tags        []string       `yaml:"tags"`
	Draft       bool           `yaml:"draft"`
	Weight      int            `yaml:"weight"`
	Slug        string         `yaml:"slug"`
	Extra       map[string]any `yaml:",inline"`
}

// Parse turns a raw content file into a validated Entry.
//
// The collection comes from the first path element, the slug from explicit
// frontmatter (validated) or the filename (normalized), and the title falls
// back to the first H1 heading when frontmatter omits it.
func Parse(p string, data []byte) (*Entry, error) {
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")

	coll, ok := CollectionForPath(p)
	if !ok {
		return nil, &SchemaError{Path: p, Err: fmt.Errorf("path is not inside a known collection")}
	}

	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(data), &env)
	if err != nil {
		return nil, fmt.Errorf("content: %s: parse frontmatter: %w", p, err)
	}

	entrySlug, err := deriveSlug(p, env.Slug)
	if err != nil {
		return nil, &SchemaError{Path: p, Err: err}
	}

	e := &Entry{
		Path:        p,
		Collection:  coll,
		Slug:        entrySlug,
		Title:       deriveTitle(env.Title, body),
		Description: strings.TrimSpace(env.Description),
		Date:        env.Date,
		Tags:        normalizeTags(env.Tags),
		Draft:       env.Draft,
		Weight:      env.Weight,
		Extra:       env.Extra,
		Body:        string(body),
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// deriveSlug validates an explicit frontmatter slug or normalizes one from
// the filename stem.
func deriveSlug(p, explicit string) (string, error) {
	if explicit != "" {
		if !slug.IsValid(explicit) {
			return "", fmt.Errorf("invalid slug %q", explicit)
		}
		return explicit, nil
	}
	stem := path.Base(p)
	for _, ext := range []string{".mdx", ".md"} {
		if strings.HasSuffix(stem, ext) {
			stem = strings.TrimSuffix(stem, ext)
			break
		}
	}
	normalized, err := slug.Normalize(stem)
	if err != nil {
		return "", fmt.Errorf("derive slug from %q: %w", stem, err)
	}
	return normalized, nil
}

// deriveTitle returns the frontmatter title if set, otherwise the first H1
// heading of the body, otherwise empty string.
func deriveTitle(explicit string, body []byte) string {
	if explicit != "" {
		return explicit
	}
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// normalizeTags trims and deduplicates, preserving first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
