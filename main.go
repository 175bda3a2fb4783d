package main

import "github.com/mount-tech/typedb/cmd"

func main() {
	cmd.Execute()
}
