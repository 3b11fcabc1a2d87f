// Package main は請求書督促サービスのエントリーポイント。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/reminder/internal/cli"
)

func main() {
	err := cli.NewRootCommand(nil).ExecuteContext(context.Background())
	if err == nil {
		return
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, exitErr.Error())
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(cli.ExitFailed)
}
