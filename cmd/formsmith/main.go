package main

import "github.com/roach88/formsmith/internal/cli"

func main() {
	cli.Execute()
}
