// Package mapping holds the override rules reviewers create when they reclassify
// a line, and the ranked lookup that applies them to future lines.
//
// A rule matches lines by signature: the raw description lowercased with its
// whitespace collapsed. LINE scope rewrites one line and is never stored;
// SUPPLIER and GLOBAL rules are upserted and consulted before the engine.
package mapping
