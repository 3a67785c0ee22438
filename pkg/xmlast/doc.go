// Package xmlast parses XML view and fragment markup into a tree that keeps
// byte offsets for every element name, attribute key and attribute value.
//
// The parser never fails. Markup that is still being typed (an open "<", a
// start tag without ">", an unterminated attribute value, an unmatched end tag)
// produces a best-effort tree so completion and hover keep working while the
// user edits.
package xmlast
