package main

import "github.com/oshokin/tauri-release/cmd/tauri-manifest/cmd"

func main() {
	cmd.Execute()
}
