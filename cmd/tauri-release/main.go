package main

import "github.com/oshokin/tauri-release/cmd/tauri-release/cmd"

func main() {
	cmd.Execute()
}
