package main

import "github.com/KaramelBytes/autoreport-cli/cmd"

func main() {
	cmd.Execute()
}
