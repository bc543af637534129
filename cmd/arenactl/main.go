package main

import (
	"github.com/arenaleague/arenaclient/internal/cli"
	"github.com/arenaleague/arenaclient/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
