package main

import "github.com/naka-gawa/org-contributors/cmd"

func main() {
	cmd.Execute()
}
