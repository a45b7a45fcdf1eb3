// Package transfer decodes and encodes the Content-transfer-encodings used on
// mail bodies: quoted-printable, base64, x-uuencode and the 7bit, 8bit and
// binary identity encodings.
//
// Decoding is streaming and never fails on bad input: a decoder stops at the
// last unit it could make sense of. Decoded bytes are normally written to a
// Sink, which converts them from the part charset in fixed-size bursts and
// inserts a quote prefix at the start of each line.
//
// For the sake of this package, "decoded" means the content has been
// transformed from the named Content-transfer-encoding to the charset
// encoded form and "encoded" means the reverse.
package transfer
