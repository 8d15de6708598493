// Package scraper fetches the Evaluation Registry's paginated search
// listing and its detail pages.
//
// CollectLinks walks the listing page by page, gathering the set of
// detail-page paths until no next-page affordance remains. FetchRecord
// extracts one detail page's labelled summary fields into a registry
// Record. Transient network failures are retried with bounded exponential
// backoff; unexpected markup aborts the run.
package scraper
