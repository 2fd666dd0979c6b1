package dag

// BlogPostNode is a supplemental schema carried over from the original
// source's linked-data/src/blog.rs (FullPost), kept out of the
// Chronicler/Verifier's live path entirely — no operation threads one into
// a tier buffer — but shipped alongside the chat/video schemas as part of
// the same linked-data package in the original, and named explicitly by
// spec.md §9's Open Questions.
type BlogPostNode struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Addr      Address `json:"addr"`
	Timestamp int64   `json:"timestamp"`
}

// NewBlogPostNode constructs a post stamped with the given publication
// time.
func NewBlogPostNode(title, content string, addr Address, timestamp int64) *BlogPostNode {
	return &BlogPostNode{Title: title, Content: content, Addr: addr, Timestamp: timestamp}
}

// Update mutates only the fields actually supplied (nil means "leave
// unchanged") and touches Timestamp only if something else about the post
// actually changed. Resolves spec.md §9's Open Question on touch semantics
// conservatively: calling Update with no effective change is a no-op that
// reports false, rather than unconditionally bumping Timestamp.
func (p *BlogPostNode) Update(title, content *string, now int64) bool {
	changed := false
	if title != nil && *title != p.Title {
		p.Title = *title
		changed = true
	}
	if content != nil && *content != p.Content {
		p.Content = *content
		changed = true
	}
	if changed {
		p.Timestamp = now
	}
	return changed
}
