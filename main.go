package main

import "github.com/flanksource/lit/cmd"

func main() {
	cmd.Execute()
}
