package main

import (
	"github.com/birchkv/birch/cmd"
)

func main() {
	cmd.Execute()
}
