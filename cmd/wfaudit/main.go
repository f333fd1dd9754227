package main

import (
	"context"

	"github.com/wfaudit/wfaudit/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
