package main

import "github.com/user/vsce-audit/cmd"

func main() {
	cmd.Execute()
}
