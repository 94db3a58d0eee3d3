package main

import (
	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/cli/sh"
)

//go-build: CGO_ENABLED=0

func init() {
	sh.SetupFlags()
}

func main() {
	defer glog.Flush()
	sh.Main()
}
