/*
Package numbering pairs the residues of an antibody chain with their canonical
(author) position numbers and implements the one piece of bookkeeping the
recombination pipeline depends on: splitting a chain at the last position of
its variable domain and splicing a variable region onto a constant region.

Positions carry an optional insertion code, so "100A" and "100" are distinct
positions. A boundary must occur exactly once in a chain; Split returns
ErrBoundaryNotFound or ErrBoundaryAmbiguous otherwise.
*/
package numbering
