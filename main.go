package main

import "github.com/KaramelBytes/chaostab-cli/cmd"

func main() {
	cmd.Execute()
}
