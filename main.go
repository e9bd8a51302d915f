package main

import "github.com/kasuboski/showmatcher/cmd"

func main() {
	cmd.Execute()
}
