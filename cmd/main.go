package main

import (
	"github.com/ps-net-stats/cmd/exporter"
)

func main() {
	exporter.Main()
}
