package main

import "shelfmark/cmd/shelfmark-cli/cmd"

func main() {
	cmd.Execute()
}
