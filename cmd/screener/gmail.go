package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ingestion"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var gmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Screen resumes received as Gmail attachments",
}

var gmailAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize read-only access to the mailbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := setup(cmd.Context(), cfgFile)
		if err != nil {
			return err
		}
		defer rt.Close()

		oauthCfg, err := ingestion.LoadOAuthConfig(rt.cfg.Gmail.CredentialsPath)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Go to the following link in your browser then type the authorization code:\n%s\n\n", ingestion.AuthCodeURL(oauthCfg))

		prompt := promptui.Prompt{
			Label: "Authorization code",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("code is required")
				}
				return nil
			},
		}
		code, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := ingestion.Authorize(cmd.Context(), oauthCfg, strings.TrimSpace(code), rt.cfg.Gmail.TokenPath); err != nil {
			return err
		}
		rt.logger.Info("gmail authorized", zap.String("token", rt.cfg.Gmail.TokenPath))
		return nil
	},
}

var (
	gmailSubject string
	gmailJobID   int
	gmailOut     string
)

var gmailScreenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Download matching attachments and rank them against a job",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := setup(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer rt.Close()

		job, err := resolveJob(rt.store, "", gmailJobID)
		if err != nil {
			return err
		}

		subject := gmailSubject
		if subject == "" {
			subject = rt.cfg.Gmail.Subject
		}

		rt.agent.SetProgressCallback(func(current, _ int, message string) {
			rt.logger.Debug(message, zap.Int("progress", current))
		})

		report, err := rt.agent.ScreenFromGmail(ctx, job, subject)
		if err != nil {
			return err
		}

		if gmailOut != "" {
			path, err := writeReport(gmailOut, report)
			if err != nil {
				return err
			}
			rt.logger.Info("report written", zap.String("path", path))
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	gmailScreenCmd.Flags().StringVar(&gmailSubject, "subject", "", "subject filter (default from gmail.subject)")
	gmailScreenCmd.Flags().IntVar(&gmailJobID, "job", 0, "id of a stored job")
	gmailScreenCmd.Flags().StringVarP(&gmailOut, "out", "o", "", "write the report to this file (.csv or .xlsx)")

	gmailCmd.AddCommand(gmailAuthCmd, gmailScreenCmd)
	rootCmd.AddCommand(gmailCmd)
}
