package main

import (
	"github.com/oshokin/voxel-launcher/cmd/voxel-launcher/cmd"
)

func main() {
	cmd.Execute()
}
