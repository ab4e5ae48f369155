/*
Package clustalo provides a wrapper for running Clustal Omega on the
per-chain FASTA files of a recombination.

Only the options the pipeline needs are exposed. The alignment is always
requested in the CLUSTAL format and read back with the clustal package.
*/
package clustalo
