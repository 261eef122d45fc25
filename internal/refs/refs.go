package refs

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"media-catalog/internal/filesystem"
	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/workers"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// maxNoteReaders caps concurrent note reads.
const maxNoteReaders = 16

// Syntax identifies how a note embeds a file.
type Syntax string

const (
	SyntaxWikilink Syntax = "wikilink"
	SyntaxMarkdown Syntax = "markdown"
	SyntaxHTML     Syntax = "html"
)

// Embed is one embedded link found in a note, before resolution.
type Embed struct {
	Target string `json:"target"`
	Syntax Syntax `json:"syntax"`
}

// Reference is a note that embeds a media file.
type Reference struct {
	Note string `json:"note"`
	// Path is the resolved vault path of the embedded file.
	Path   string `json:"path"`
	Target string `json:"target"`
	Syntax Syntax `json:"syntax"`
}

var (
	wikiEmbedRe     = regexp.MustCompile(`!\[\[([^\]\n]+)\]\]`)
	markdownEmbedRe = regexp.MustCompile(`!\[[^\]\n]*\]\(\s*(<[^>\n]+>|[^)\s]+)(?:\s+"[^"\n]*")?\s*\)`)
	htmlTagRe       = regexp.MustCompile(`(?i)<(img|video|audio|source)\b`)
)

// IsNote reports whether p is a markdown note.
func IsNote(p string) bool {
	return mediatypes.Extension(p) == "md"
}

// ExtractEmbeds returns the embeds in a note in the order they appear:
// wikilinks first, then markdown images, then HTML media elements.
func ExtractEmbeds(content []byte) []Embed {
	text := string(content)
	var embeds []Embed

	for _, m := range wikiEmbedRe.FindAllStringSubmatch(text, -1) {
		target := m[1]
		// ![[file.png|300]] and ![[note#heading]]
		if i := strings.IndexAny(target, "|#"); i >= 0 {
			target = target[:i]
		}
		if target = strings.TrimSpace(target); target != "" {
			embeds = append(embeds, Embed{Target: target, Syntax: SyntaxWikilink})
		}
	}

	for _, m := range markdownEmbedRe.FindAllStringSubmatch(text, -1) {
		target := strings.TrimSuffix(strings.TrimPrefix(m[1], "<"), ">")
		if target = cleanLinkTarget(target); target != "" {
			embeds = append(embeds, Embed{Target: target, Syntax: SyntaxMarkdown})
		}
	}

	if htmlTagRe.MatchString(text) {
		embeds = append(embeds, extractHTML(text)...)
	}
	return embeds
}

func extractHTML(text string) []Embed {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		logging.Debug("Failed to parse note HTML: %v", err)
		return nil
	}

	var embeds []Embed
	doc.Find("img, video, audio, source").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		if target := cleanLinkTarget(src); target != "" {
			embeds = append(embeds, Embed{Target: target, Syntax: SyntaxHTML})
		}
	})
	return embeds
}

// cleanLinkTarget drops external URLs, query strings and fragments and
// decodes percent escapes.
func cleanLinkTarget(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || strings.Contains(target, "://") || strings.HasPrefix(target, "data:") {
		return ""
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	return target
}

// Resolver maps link targets to vault paths.
type Resolver struct {
	paths  map[string]bool
	byName map[string][]string
}

// NewResolver builds a resolver over the given vault paths.
func NewResolver(paths []string) *Resolver {
	r := &Resolver{
		paths:  make(map[string]bool, len(paths)),
		byName: make(map[string][]string),
	}
	for _, p := range paths {
		p = mediatypes.ToSlash(p)
		r.paths[p] = true
		name := path.Base(p)
		r.byName[name] = append(r.byName[name], p)
	}
	for _, list := range r.byName {
		sort.Slice(list, func(i, j int) bool {
			if len(list[i]) != len(list[j]) {
				return len(list[i]) < len(list[j])
			}
			return list[i] < list[j]
		})
	}
	return r
}

// Resolve returns the vault path a target in note refers to. Targets are
// tried relative to the note, then from the vault root; wikilinks also
// match by file name, preferring the shortest path.
func (r *Resolver) Resolve(note string, e Embed) (string, bool) {
	target := mediatypes.ToSlash(e.Target)

	if !strings.HasPrefix(target, "/") {
		if p := path.Join(path.Dir(note), target); r.paths[p] {
			return p, true
		}
	}
	if p := path.Clean(strings.TrimPrefix(target, "/")); r.paths[p] {
		return p, true
	}
	if e.Syntax == SyntaxWikilink && !strings.Contains(target, "/") {
		if list := r.byName[target]; len(list) > 0 {
			return list[0], true
		}
	}
	return "", false
}

// Finder answers which notes embed a media file.
type Finder struct {
	vault filesystem.Vault
}

// NewFinder creates a Finder reading notes from v.
func NewFinder(v filesystem.Vault) *Finder {
	return &Finder{vault: v}
}

// Find returns every note embedding mediaPath, sorted by note path. Notes
// that cannot be read are logged and skipped.
func (f *Finder) Find(ctx context.Context, mediaPath string) ([]Reference, error) {
	all, err := f.Build(ctx)
	if err != nil {
		return nil, err
	}
	refs := all[mediatypes.ToSlash(mediaPath)]
	if refs == nil {
		refs = []Reference{}
	}
	return refs, nil
}

// Build resolves every embed in every note, keyed by embedded vault path.
// Notes are read concurrently; each target's references stay in note path
// order.
func (f *Finder) Build(ctx context.Context) (map[string][]Reference, error) {
	files, err := f.vault.List()
	if err != nil {
		return nil, fmt.Errorf("list vault: %w", err)
	}

	paths := make([]string, 0, len(files))
	var notes []string
	for _, fi := range files {
		paths = append(paths, fi.Path)
		if IsNote(fi.Path) {
			notes = append(notes, fi.Path)
		}
	}
	resolver := NewResolver(paths)

	perNote := make([][]Reference, len(notes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers.Count(workers.IOBound, maxNoteReaders))
	for i, note := range notes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := f.vault.Read(note)
			if err != nil {
				logging.Warn("Failed to read note %s: %v", note, err)
				return nil
			}
			perNote[i] = resolveNote(resolver, note, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]Reference)
	for _, refs := range perNote {
		for _, ref := range refs {
			out[ref.Path] = append(out[ref.Path], ref)
		}
	}
	return out, nil
}

// resolveNote returns one reference per distinct file the note embeds.
func resolveNote(resolver *Resolver, note string, content []byte) []Reference {
	var refs []Reference
	seen := make(map[string]bool)
	for _, e := range ExtractEmbeds(content) {
		target, ok := resolver.Resolve(note, e)
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		refs = append(refs, Reference{Note: note, Path: target, Target: e.Target, Syntax: e.Syntax})
	}
	return refs
}
