package catalog

// DefaultRecentTagCap is the default size of the recently used tag list.
const DefaultRecentTagCap = 20

// RecentTags is a bounded most-recently-used tag list, most recent first.
// It is not safe for concurrent use; the Index guards it.
type RecentTags struct {
	limit int
	tags  []string
}

// NewRecentTags creates a list holding at most limit tags. A non-positive
// limit falls back to DefaultRecentTagCap.
func NewRecentTags(limit int) *RecentTags {
	if limit <= 0 {
		limit = DefaultRecentTagCap
	}
	return &RecentTags{limit: limit}
}

// Push records tags as used, in order, so the last one ends up in front.
func (r *RecentTags) Push(tags ...string) {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		for i, existing := range r.tags {
			if existing == tag {
				r.tags = append(r.tags[:i], r.tags[i+1:]...)
				break
			}
		}
		r.tags = append([]string{tag}, r.tags...)
	}
	if len(r.tags) > r.limit {
		r.tags = r.tags[:r.limit]
	}
}

// List returns a copy of the tags, most recent first.
func (r *RecentTags) List() []string {
	return append([]string{}, r.tags...)
}

// Len returns the number of tags held.
func (r *RecentTags) Len() int {
	return len(r.tags)
}
