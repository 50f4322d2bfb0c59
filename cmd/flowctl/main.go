// Command flowctl inspects and edits campaign flow files without the API
// server.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
