// Command bcscreen screens sequencing reads for embedded barcode/adapter
// contamination and partitions them into kept and discarded files.
//
// Usage:
//
//	bcscreen --reads reads.fastq.gz --barcodes barcodes.fasta --out-dir out
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
