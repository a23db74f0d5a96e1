package main

import "github.com/camden-git/gatewatch/cmd"

func main() {
	cmd.Execute()
}
