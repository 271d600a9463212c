package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/lakewatch/internal/notification"
	"github.com/forest-guardian/lakewatch/internal/properties"
)

func printBanner() {
	figure1 := figure.NewFigure("Lake", "isometric1", true)
	figure2 := figure.NewFigure("Watch", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	// 3 levels up is often the panic source
	pc, file, line, ok := runtime.Caller(3)
	location := "Unknown location"
	if ok {
		location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
	}

	fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
	fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
	fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
	fmt.Printf("\033[31mExiting...\033[0m\n")

	errMessage := fmt.Sprintf("LakeWatch CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
	if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
		fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
	}
	os.Exit(2)
}

func main() {
	defer recoverPanic()

	if err := properties.Load(".env", "../.env", "../../.env"); err != nil {
		fmt.Printf("\033[33mNo .env file found, using the environment as is\033[0m\n")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
