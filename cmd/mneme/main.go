package main

import "github.com/NVIDIA/instance-registry/pkg/cli"

func main() {
	cli.Execute()
}
