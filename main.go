package main

import "actions-auditor/cmd"

func main() {
	cmd.Execute()
}
