package main

import "github.com/iceman-twitch/wow-auto/internal/cli"

func main() {
	cli.Execute()
}
