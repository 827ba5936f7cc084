package main

import "github.com/MrSnakeDoc/archivist/cmd/archivist/cmd"

func main() {
	cmd.Execute()
}
