// Command demo runs the marker sample program.
package main

import (
	"os"

	"codelinks/internal/demo"
)

func main() {
	demo.Run(os.Stdout)
}
