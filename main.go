package main

import (
	"os"

	"github.com/anindta/task-management-project/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
