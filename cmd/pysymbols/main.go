package main

import "pysymbols/internal/cli"

func main() {
	cli.Execute()
}
