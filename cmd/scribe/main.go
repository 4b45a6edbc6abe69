// Command scribe is a small CLI over the platform client: listings, search,
// author statistics and session management.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
