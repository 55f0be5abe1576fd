package main

import (
	"log"
	"os"

	"github.com/trezcool/masomo-dashboard/core"
)

func main() {
	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := commandLine{
		conf:     core.NewConfig(),
		stdout:   os.Stdout,
		stdoutFd: int(os.Stdout.Fd()),
	}
	err := cli.run(os.Args)
	if cErr := cli.close(); cErr != nil {
		logger.Printf("closing database: %s", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("error: %+v", err)
		}
		os.Exit(1)
	}
}
