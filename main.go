package main

import "github.com/HenryLodge/viro-sub000/cmd"

func main() {
	cmd.Execute()
}
