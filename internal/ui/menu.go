package ui

import (
	"fmt"

	"github.com/forest-guardian/lakewatch/internal/delivery"
)

type menuOption struct {
	title   string
	handler func()
}

// ShowMenu displays the main menu and handles user input
func ShowMenu(setup delivery.Setup) {
	menuOptions := []menuOption{
		{"Analyze lake encroachment, water and vegetation change", func() { AnalyzeLakes(setup) }},
		{"View the planned map layers and areas", func() { ListLayers(setup.ConfigPath) }},
		{"View previous analysis runs", ListRuns},
		{"Write the default configuration file", func() { InitConfig(setup.ConfigPath) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}
		fmt.Printf("\033[34m%d. Exit the application\033[0m\n", len(menuOptions)+1)

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions)+1)
		if err != nil {
			if stdinClosed {
				fmt.Println("Exiting...")
				return
			}
			fmt.Printf("\n\033[31mInvalid choice. Please try again.\033[0m\n")
			continue
		}
		if choice == len(menuOptions)+1 {
			fmt.Println("Exiting...")
			return
		}

		menuOptions[choice-1].handler()
	}
}
