// jsoncollate merges a directory of JSON records into one combined file and
// writes descriptive statistics to a spreadsheet report.
//
// Usage:
//
//	jsoncollate [--input-dir=./json_files] [-o combined.json] [--report combined_analysis.xlsx]
//	jsoncollate check [file...]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
