package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage stored job postings",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := setup(cmd.Context(), cfgFile)
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.store.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSKILLS\tYEARS")
		for _, j := range list {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", j.ID, j.Title, j.Skills, j.YearsExperience)
		}
		return tw.Flush()
	},
}

var jobFields models.JobRecord

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := setup(cmd.Context(), cfgFile)
		if err != nil {
			return err
		}
		defer rt.Close()

		job, err := rt.store.Add(jobFields)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added job %d: %s\n", job.ID, job.Title)
		return nil
	},
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace the fields of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		rt, err := setup(cmd.Context(), cfgFile)
		if err != nil {
			return err
		}
		defer rt.Close()

		if _, err := rt.store.Update(id, jobFields); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated job %d\n", id)
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		rt, err := setup(cmd.Context(), cfgFile)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %d\n", id)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{jobsAddCmd, jobsUpdateCmd} {
		c.Flags().StringVar(&jobFields.Title, "title", "", "job title")
		c.Flags().StringVar(&jobFields.Skills, "skills", "", "comma-separated required skills")
		c.Flags().StringVar(&jobFields.Description, "description", "", "job description")
		c.Flags().IntVar(&jobFields.YearsExperience, "years", 0, "required years of experience")
		for _, name := range []string{"title", "skills", "description"} {
			cobra.CheckErr(c.MarkFlagRequired(name))
		}
	}

	jobsCmd.AddCommand(jobsListCmd, jobsAddCmd, jobsUpdateCmd, jobsDeleteCmd)
	rootCmd.AddCommand(jobsCmd)
}

func parseJobID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id: %q", raw)
	}
	return id, nil
}
