// Package xmlwitness imports marked-up XML documents as witness graphs.
//
// # Variation Markup
//
// Elements that express alternative readings become variation points in
// the witness graph, with one branch per reading:
//
//   - A run of adjacent <del> and <add> siblings forms one variation point
//     with a branch per element. Whitespace between them is ignored.
//   - A standalone <del> or <add> forms a variation point with a branch for
//     its content and an empty branch, so the text can be read with or
//     without it.
//   - <subst>, <app> and <choice> form one variation point with a branch
//     per element child (<del>, <add>, <rdg>, <lem>, <sic>, <corr>, ...).
//
// All other elements are plain markup. Empty elements such as <lb/> become
// milestone tokens with empty content.
//
// # Tokenization
//
// Text is split into word tokens carrying their trailing whitespace and
// punctuation runs; whitespace-only text is dropped. The normalized form
// of every token is computed with the configured witness.NormalizeFunc.
//
// # Security
//
// Parsing uses xmlquery, which builds on encoding/xml and never fetches
// external entities.
package xmlwitness
