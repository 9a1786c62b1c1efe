package main

import "github.com/podforge/podforge/cmd/podforge/internal"

func main() {
	internal.Execute()
}
