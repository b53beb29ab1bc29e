// Copyright (C) 2017 ScyllaDB

package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.OutOrStderr(), "\nERROR: %s\n\n", err)

		// systemd drops the last output lines of a failed unit [1], sleeping
		// a bit over a second keeps the error visible in systemctl status.
		//
		// [1] https://github.com/systemd/systemd/issues/2913
		time.Sleep(1100 * time.Millisecond)

		os.Exit(1)
	}

	os.Exit(0)
}
