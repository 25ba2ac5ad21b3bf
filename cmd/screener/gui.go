package main

import (
	"fyne.io/fyne/v2/app"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/config"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/gui"
	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgFile
		savePath := cfgFile
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			savePath = p
			if fileExists(p) {
				path = p
			}
		}

		rt, err := setup(cmd.Context(), path)
		if err != nil {
			return err
		}
		defer rt.Close()

		fyneApp := app.NewWithID("com.aqore.resume-screener")
		gui.NewApp(fyneApp, rt.cfg, savePath, rt.store, rt.agent, rt.logger).Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
