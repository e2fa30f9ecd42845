package rmd

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	idReplacer = strings.NewReplacer(" ", "-", "_", "-", "[", "-", "]", "")
	idInvalid  = regexp.MustCompile(`[^a-z0-9\-_]`)
	idDashes   = regexp.MustCompile(`-+`)
)

// HTMLID converts s to a string usable as an HTML id attribute:
// "RMD PhD Advising Roles" becomes "rmd-phd-advising-roles".
func HTMLID(s string) string {
	id := idReplacer.Replace(strings.ToLower(s))
	id = idInvalid.ReplaceAllString(id, "")
	return idDashes.ReplaceAllString(id, "-")
}

// IDRegistry hands out HTML ids that are unique among the ids it has
// already issued. The second request for "rmd-grants" yields "rmd-grants--2",
// the third "rmd-grants--3".
//
// Share one registry across every section rendered into the same page.
// The zero value is ready to use and safe for concurrent use.
type IDRegistry struct {
	mu   sync.Mutex
	seen map[string]int
}

// NewIDRegistry returns an empty registry.
func NewIDRegistry() *IDRegistry {
	return &IDRegistry{}
}

// UniqueID returns [HTMLID] of s, suffixed when it was issued before.
func (r *IDRegistry) UniqueID(s string) string {
	id := HTMLID(s)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = make(map[string]int)
	}
	if n, ok := r.seen[id]; ok {
		r.seen[id] = n + 1
		return id + "--" + strconv.Itoa(n+1)
	}
	r.seen[id] = 1
	return id
}
