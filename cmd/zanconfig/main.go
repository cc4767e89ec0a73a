package main

import "github.com/zancompute/zanconfig/internal/cmd"

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd.SetBuildInfo(version, commit)
	cmd.Execute()
}
