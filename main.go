package main

import "aimon-cli/cmd"

func main() {
	cmd.Execute()
}
