// Package document provides an in-memory structured document for tests,
// examples, and small pipelines that do not bring their own document
// store.
//
// The Memory document models text as ordered sentences of tokens and
// records edits as suggestion annotations on their target units, leaving
// the surface text untouched. Callers with a real document format
// implement types.Document over it instead; Memory is the reference
// adapter.
package document
