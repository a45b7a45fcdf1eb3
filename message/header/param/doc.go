// Package param parses and formats the parameter lists found in parameterized
// header fields such as Content-type and Content-disposition. Parsing is
// lenient: malformed segments are logged and skipped rather than failing the
// whole field. RFC 2231 extended values, continuations and charset tags are
// decoded into UTF-8, and formatting produces RFC 2231 output for values that
// cannot travel as plain tokens.
package param
