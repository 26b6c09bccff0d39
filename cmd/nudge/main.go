package main

import "github.com/attunehq/nudge/cmd"

func main() {
	cmd.Execute()
}
