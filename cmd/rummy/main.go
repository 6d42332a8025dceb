package main

import "github.com/kprao/rummyscore/internal/cli"

func main() {
	cli.Execute()
}
