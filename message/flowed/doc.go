// Package flowed reads and writes text/plain bodies with format=flowed as
// described in RFC 3676.
//
// Reflow joins the soft broken lines of each paragraph and wraps the result
// again at the requested width. Quote depth is taken from the leading run of
// '>' characters and each change of depth starts a new paragraph. Stuff and
// UnstuffForStorage add and remove the space that protects lines starting
// with a space or "From ".
package flowed
