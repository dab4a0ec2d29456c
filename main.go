package main

import "github.com/shelfpoint/shelfpoint/cmd"

func main() {
	cmd.Execute()
}
