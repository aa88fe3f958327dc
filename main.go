package main

import "vodgrep/cmd"

func main() {
	cmd.Execute()
}
