// delphictl administers a delphi deployment without going through the HTTP
// API: credentials, collections, ingestion and one-off questions.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
