// Command pcdlod builds a streamable LOD tile set plus manifest from a
// whitespace-text point cloud (spec.md §6's CLI surface).
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
