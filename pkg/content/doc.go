// Package content holds the capability catalog shown by the site and CLI.
//
// The catalog is a YAML document listing capabilities in display order.
// A copy is embedded in the binary ([Default]); [Open] loads a replacement
// from a file or an http(s) URL. A [Store] holds the catalog currently
// served and can follow a file with [Store.Watch].
//
// [LLMsTxt] renders the plain-text reference published at /llms.txt.
package content
