// Package header reads the header block of a message or of a MIME part. The
// fields are preserved as they were found, and the typed getters parse the
// pieces the MIME engine cares about: the content type and disposition with
// their parameters, the transfer encoding, addresses, and dates.
//
// Envelope collects the fields that describe a message as a whole.
package header
