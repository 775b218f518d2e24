package main

import "github.com/killallgit/clipdeck-api/cmd"

func main() {
	cmd.Execute()
}
