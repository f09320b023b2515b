package main

import "github.com/Tiliavir/file-time-tracker/cmd"

func main() {
	cmd.Execute()
}
