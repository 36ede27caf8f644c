// sawfit places rectangular pieces on a board with saw kerf, using a
// two-phase MILP: fit as much area as possible, then pack it tight.
//
// Build:
//   go build -o sawfit ./cmd/sawfit
//
// Examples:
//   sawfit solve "B:1000x2000 S:2.5 23.5x33 34.5x3r 2x300x200r" --png board.png
//   sawfit serve --addr :8080

package main

import (
	"os"

	"k8s.io/klog/v2"
)

func main() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
