package main

import "github.com/windbackhq/windback-bff/cmd/windback-bff/cmd"

func main() {
	cmd.Execute()
}
