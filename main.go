package main

import "github.com/taskcore/task-management/cmd"

func main() {
	cmd.Execute()
}
