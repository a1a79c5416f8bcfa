// Command vitrine serves the corporate site and its careers catalog
package main

import (
	"os"

	"github.com/go-while/go-vitrine/internal/config"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
