package cmd

import (
	"github.com/spf13/cobra"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Shows the license and third-party notices of mcstatus",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range []string{"LICENSE", "LICENSE_NOTICES"} {
			bb, err := files.ReadFile(name)
			if err != nil {
				return err
			}

			if _, err := cmd.OutOrStdout().Write(append(bb, '\n')); err != nil {
				return err
			}
		}
		return nil
	},
}
