package main

import "github.com/valkyriedb/bloblog/cmd/blobwalk/cmd"

func main() {
	cmd.Execute()
}
