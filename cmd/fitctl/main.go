package main

import "github.com/mcoot/fitness-tracking/internal/cli"

func main() {
	cli.Execute()
}
