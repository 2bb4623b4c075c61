package main

import "github.com/epwatch/epwatch/cmd"

func main() {
	cmd.Execute()
}
