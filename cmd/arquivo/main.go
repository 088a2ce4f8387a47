package main

import "github.com/turbolytics/arquivo/internal/cmd"

func main() {
	cmd.Execute()
}
