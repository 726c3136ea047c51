// Package doccache provides a local documentation caching and retrieval
// service. It fetches named external documents (URLs, local files, GitHub
// blobs and gists, npm package readmes), normalizes them to markdown,
// stores them with bounded version history, indexes them line-by-line,
// and answers relevance-ranked queries across the whole corpus.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or role (e.g., fs/, http/, goquery/).
package doccache
