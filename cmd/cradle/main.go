package main

import (
	"github.com/ravenfell/cradle/internal/cli"
	"github.com/ravenfell/cradle/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
