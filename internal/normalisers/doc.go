// Package normalisers turns uploaded bytes into plain text. Each
// subpackage handles a set of MIME types; NewDefaultRegistry installs
// all of them.
package normalisers
