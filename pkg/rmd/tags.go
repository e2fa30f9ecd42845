package rmd

import "slices"

// BaseTag is attached to every record the fetcher writes.
const BaseTag = "rmd_data"

// ProfileTag returns the tag attached to every record written for username.
func ProfileTag(username string) string {
	return BaseTag + ":profile:" + username
}

// TagSet is an ordered set of cache tags built for a single cache write.
type TagSet struct {
	tags []string
}

// NewTagSet returns the base tags for a lookup of username.
func NewTagSet(username string) *TagSet {
	s := &TagSet{}
	s.Add(BaseTag, ProfileTag(username))
	return s
}

// Add appends tags that are not already present. Empty tags are ignored.
func (s *TagSet) Add(tags ...string) {
	for _, t := range tags {
		if t != "" && !slices.Contains(s.tags, t) {
			s.tags = append(s.tags, t)
		}
	}
}

// Has reports whether tag is in the set.
func (s *TagSet) Has(tag string) bool {
	return slices.Contains(s.tags, tag)
}

// Tags returns a copy of the tags in insertion order.
func (s *TagSet) Tags() []string {
	return slices.Clone(s.tags)
}
