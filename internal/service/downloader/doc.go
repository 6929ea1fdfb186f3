// Package downloader fetches release assets over HTTP.
//
// Each fetch streams the response body chunk by chunk into memory and writes
// the completion fraction into the shared progress cell whenever the server
// advertised a total length. Failures are reported to the notification sink;
// callers only see presence or absence of the downloaded bytes.
package downloader
