package main

import "aomame/internal/cli"

func main() {
	cli.Execute()
}
