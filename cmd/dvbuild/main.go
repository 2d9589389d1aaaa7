package main

import "github.com/dumageview/dvbuild/cmd/dvbuild/internal"

func main() {
	internal.Execute()
}
