// Package patterns evaluates include/ignore filename filters.
//
// A pattern is a shell glob (matched with doublestar against the bare file
// name) or a regular expression written as re:/expr/. Regex bodies are tried
// as written and again after normalizing escaped delimiters and non-RE2
// named-group syntax, so patterns authored for other engines still work.
package patterns
