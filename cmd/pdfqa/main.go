package main

import "pdfqa/internal/cli"

func main() {
	cli.Execute()
}
