// Package rmd fetches faculty profiles from the Researcher Metadata Database
// (RMD) API and caches them.
//
// # Overview
//
// A [Fetcher] resolves a username to a [Record] by consulting a [cache.Store]
// first and calling the remote API only on a miss:
//
//	store := cache.NewMemoryStore(0)
//	f := rmd.NewFetcher(store, rmd.NewHTTPClient(10*time.Second, nil), cfg)
//
//	rec := f.FetchProfile(ctx, "abc123")
//	title, ok := f.FetchAttribute(ctx, "abc123", "title")
//	pubs := f.FetchPublications(ctx, "abc123")
//
// # Failure Semantics
//
// Lookups never return errors. Remote failures (transport errors, unexpected
// statuses, malformed bodies) are logged and produce an empty [Record] that is
// not cached, so the next lookup tries again. A 404 whose body says the user
// was not found is an expected outcome: the empty record is cached for the
// configured TTL so unknown usernames do not hit the API repeatedly.
//
// Each lookup makes at most one outbound request and at most one cache
// write. Concurrent misses for the same username are not de-duplicated.
//
// # Cache Keys and Tags
//
// Records are stored under "psul_rmd_data:{endpoint}:{username}" and tagged
// with [BaseTag] and [ProfileTag] of the username, plus any tags the caller
// attaches with [WithCacheTags] or [Fetcher.AddCacheTags]. Invalidating
// [ProfileTag] purges one user; invalidating [BaseTag] purges everything the
// fetcher wrote.
//
// # Publications
//
// [Fetcher.FetchPublications] turns the list-valued attributes named by the
// configured display order into [PublicationSection] values with the fixed
// labels from [Categories]. Empty, unknown and disabled categories are left
// out.
package rmd
