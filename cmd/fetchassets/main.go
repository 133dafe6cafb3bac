package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	get "github.com/hashicorp/go-getter"
)

func main() {
	var (
		base    = flag.String("base", "https://github.com/PrismarineJS/minecraft-data.git", "base url")
		version = flag.String("version", "b1.8.1", "legacy protocol version directory to fetch")
		out     = flag.String("o", "./assets", "output dir path")
	)
	flag.Parse()

	if *out == "" {
		panic("output dir path required")
	}
	if *version == "" {
		panic("version required")
	}

	path := fmt.Sprintf("%s/%s", *out, *version)

	if err := os.RemoveAll(path); err != nil {
		panic(err)
	}

	log.Default().Printf("start downloading block/item catalogue %s", path)

	// https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/b1.8.1
	url := fmt.Sprintf("git::%s//data/pc/%s", *base, *version)

	if err := get.Get(path, url); err != nil {
		panic(err)
	}

	log.Default().Printf("done downloading catalogue %s", path)
}
